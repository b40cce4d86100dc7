package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worklog/internal/platform/apperror"
	"worklog/internal/platform/dates"
	"worklog/internal/platform/storage"
)

var protectedFields = []string{"id", "createdAt", "updatedAt"}

type Service struct {
	projects storage.Records[Project]
	members  storage.Records[Member]
	now      func() time.Time
	log      *zap.Logger
}

func NewService(store storage.Store) *Service {
	return &Service{
		projects: storage.Records[Project]{Store: store, Collection: storage.Projects, Envelope: "projects"},
		members:  storage.Records[Member]{Store: store, Collection: storage.ProjectMembers, Envelope: "members"},
		now:      time.Now,
		log:      zap.L().Named("projects.service"),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// List returns all projects, persisting an empty collection on first use.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	items, err := s.projects.All(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if items == nil {
		populated, err := s.projects.Populated(ctx)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !populated {
			if err := s.projects.Replace(ctx, nil); err != nil {
				return nil, apperror.Internal(err)
			}
		}
		items = []Project{}
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Project, error) {
	key := Criteria{ProjectNumber: in.ProjectNumber, ProjectName: in.ProjectName}.normalized()
	if key.ProjectNumber == "" || key.ProjectName == "" {
		return Project{}, ErrMissingKey
	}
	if err := validateDates(in.StartDate, in.EndDate); err != nil {
		return Project{}, err
	}
	items, err := s.projects.All(ctx)
	if err != nil {
		return Project{}, apperror.Internal(err)
	}
	for _, p := range items {
		if key.matchesBoth(p) {
			return Project{}, ErrDuplicate
		}
	}
	project := Project{
		ID:            uuid.NewString(),
		ProjectNumber: key.ProjectNumber,
		ProjectName:   key.ProjectName,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Description:   in.Description,
		CreatedAt:     s.stamp(),
	}
	if err := s.projects.Replace(ctx, append(items, project)); err != nil {
		return Project{}, apperror.Internal(err)
	}
	s.log.Info("project created", zap.String("id", project.ID), zap.String("number", project.ProjectNumber))
	return project, nil
}

func (s *Service) Get(ctx context.Context, id string) (Project, error) {
	p, ok, err := s.projects.Find(ctx, func(p Project) bool { return p.ID == id })
	if err != nil {
		return Project{}, apperror.Internal(err)
	}
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

// Resolve finds a project by id, number or name, in that order.
func (s *Service) Resolve(ctx context.Context, key string) (Project, error) {
	key = strings.TrimSpace(key)
	items, err := s.projects.All(ctx)
	if err != nil {
		return Project{}, apperror.Internal(err)
	}
	for _, match := range []func(Project) bool{
		func(p Project) bool { return p.ID == key },
		func(p Project) bool { return p.ProjectNumber == key },
		func(p Project) bool { return p.ProjectName == key },
	} {
		for _, p := range items {
			if match(p) {
				return p, nil
			}
		}
	}
	return Project{}, ErrNotFound
}

// Search returns the first project matching any non-empty criterion.
func (s *Service) Search(ctx context.Context, c Criteria) (Project, error) {
	if c.empty() {
		return Project{}, ErrMissingCriteria
	}
	p, ok, err := s.projects.Find(ctx, c.matchesAny)
	if err != nil {
		return Project{}, apperror.Internal(err)
	}
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (Project, error) {
	return s.update(ctx, func(p Project) bool { return p.ID == id }, patch)
}

// UpdateMatching merges patch into the first project matching c.
func (s *Service) UpdateMatching(ctx context.Context, c Criteria, patch map[string]any) (Project, error) {
	if c.empty() {
		return Project{}, ErrMissingCriteria
	}
	return s.update(ctx, c.matchesAny, patch)
}

func (s *Service) update(ctx context.Context, match func(Project) bool, patch map[string]any) (Project, error) {
	clean := make(map[string]any, len(patch))
	for k, v := range patch {
		clean[k] = v
	}
	for _, k := range protectedFields {
		delete(clean, k)
	}
	updated, err := s.projects.Update(ctx, match, func(p *Project) error {
		if err := storage.Merge(p, clean); err != nil {
			return apperror.Validation("Invalid project fields").WithErr(err)
		}
		if strings.TrimSpace(p.ProjectNumber) == "" || strings.TrimSpace(p.ProjectName) == "" {
			return ErrMissingKey
		}
		if err := validateDates(p.StartDate, p.EndDate); err != nil {
			return err
		}
		p.UpdatedAt = s.stamp()
		return nil
	})
	if errors.Is(err, storage.ErrNoMatch) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, apperror.From(err)
	}
	return updated, nil
}

// Delete removes the project identified by both number and name.
func (s *Service) Delete(ctx context.Context, c Criteria) (Project, error) {
	n := c.normalized()
	if n.ProjectNumber == "" || n.ProjectName == "" {
		return Project{}, ErrMissingKey
	}
	removed, err := s.projects.Delete(ctx, n.matchesBoth)
	if errors.Is(err, storage.ErrNoMatch) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, apperror.Internal(err)
	}
	s.log.Info("project deleted", zap.String("number", n.ProjectNumber), zap.String("name", n.ProjectName))
	return removed[0], nil
}

// Details resolves key and collects the members booked against it.
func (s *Service) Details(ctx context.Context, key string) (Details, error) {
	project, err := s.Resolve(ctx, key)
	if err != nil {
		return Details{}, err
	}
	members, err := s.members.Filter(ctx, func(m Member) bool {
		return (m.ProjectID != "" && m.ProjectID == project.ID) ||
			(m.ProjectNumber != "" && m.ProjectNumber == project.ProjectNumber) ||
			(m.ProjectName != "" && m.ProjectName == project.ProjectName)
	})
	if err != nil {
		return Details{}, apperror.Internal(err)
	}
	total := 0.0
	for _, m := range members {
		total += m.Hours
	}
	return Details{Project: project, Members: members, TotalHours: total}, nil
}

func (s *Service) AddMember(ctx context.Context, key string, in AddMemberInput) (Member, error) {
	if strings.TrimSpace(in.Employee) == "" {
		return Member{}, apperror.Validation("Employee is required")
	}
	if in.Hours < 0 {
		return Member{}, apperror.Validation("Hours must not be negative")
	}
	project, err := s.Resolve(ctx, key)
	if err != nil {
		return Member{}, err
	}
	member := Member{
		ID:            uuid.NewString(),
		ProjectID:     project.ID,
		ProjectNumber: project.ProjectNumber,
		ProjectName:   project.ProjectName,
		Employee:      strings.TrimSpace(in.Employee),
		Hours:         in.Hours,
		CreatedAt:     s.stamp(),
	}
	if err := s.members.Append(ctx, member); err != nil {
		return Member{}, apperror.Internal(err)
	}
	return member, nil
}

func validateDates(start, end string) error {
	var from, to time.Time
	var err error
	if strings.TrimSpace(start) != "" {
		if from, err = dates.Parse(start); err != nil {
			return ErrInvalidDates.WithDetails(map[string]string{"startDate": "must be a valid date"})
		}
	}
	if strings.TrimSpace(end) != "" {
		if to, err = dates.Parse(end); err != nil {
			return ErrInvalidDates.WithDetails(map[string]string{"endDate": "must be a valid date"})
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return ErrInvalidDates.WithDetails(map[string]string{"endDate": "must be on or after startDate"})
	}
	return nil
}
