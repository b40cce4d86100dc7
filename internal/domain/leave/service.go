package leave

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worklog/internal/platform/apperror"
	"worklog/internal/platform/dates"
	"worklog/internal/platform/storage"
)

// Notifier is told about every applied status transition.
type Notifier interface {
	LeaveStatusChanged(ctx context.Context, change StatusChange)
}

type Service struct {
	requests     storage.Records[LeaveRequest]
	store        storage.Store
	defaultTotal float64
	notifier     Notifier
	now          func() time.Time
	log          *zap.Logger
}

func NewService(store storage.Store, defaultTotal float64) *Service {
	if defaultTotal <= 0 {
		defaultTotal = 20
	}
	return &Service{
		requests:     storage.NewRecords[LeaveRequest](store, storage.LeaveRequests),
		store:        store,
		defaultTotal: defaultTotal,
		now:          time.Now,
		log:          zap.L().Named("leave.service"),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (LeaveRequest, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.LeaveType) == "" {
		return LeaveRequest{}, ErrMissingFields
	}
	start, err := dates.Parse(in.StartDate)
	if err != nil {
		return LeaveRequest{}, ErrInvalidDates.WithErr(err)
	}
	end := start
	if strings.TrimSpace(in.EndDate) != "" {
		if end, err = dates.Parse(in.EndDate); err != nil {
			return LeaveRequest{}, ErrInvalidDates.WithErr(err)
		}
	}
	span, err := CalculateDays(start, end)
	if err != nil {
		return LeaveRequest{}, ErrInvalidDates.WithErr(err)
	}
	days := in.Days
	if days <= 0 {
		days = 1
		if strings.TrimSpace(in.EndDate) != "" {
			days = span
		}
	}

	now := s.now()
	submitted := in.SubmissionDate
	if submitted == "" {
		submitted = now.Format(dates.USLayout)
	}
	req := LeaveRequest{
		ID:             uuid.NewString(),
		Name:           name,
		Days:           days,
		Hours:          in.Hours,
		StartDate:      start.Format(dates.KeyLayout),
		EndDate:        end.Format(dates.KeyLayout),
		LeaveType:      strings.TrimSpace(in.LeaveType),
		Reason:         in.Reason,
		SubmissionDate: submitted,
		Status:         StatusPending,
		CreatedAt:      now.UTC(),
	}
	if err := s.requests.Append(ctx, req); err != nil {
		return LeaveRequest{}, apperror.Internal(err)
	}
	s.log.Info("leave request submitted", zap.String("id", req.ID), zap.String("name", name), zap.Float64("days", days))
	return req, nil
}

// List returns requests newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]LeaveRequest, error) {
	items, err := s.requests.Filter(ctx, f.matches)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (LeaveRequest, error) {
	req, ok, err := s.requests.Find(ctx, func(r LeaveRequest) bool { return r.ID == id })
	if err != nil {
		return LeaveRequest{}, apperror.Internal(err)
	}
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	return req, nil
}

// UpdateStatus moves request id to status. Approval charges the request's
// days against the employee's balance after the request itself is saved.
func (s *Service) UpdateStatus(ctx context.Context, id, status, actor string) (StatusChange, error) {
	return s.transition(ctx, func(r LeaveRequest) bool { return r.ID == id }, ErrNotFound, status, actor)
}

// UpdateStatusByName decides the most recent pending request of an employee,
// optionally restricted to one leave type.
func (s *Service) UpdateStatusByName(ctx context.Context, name, leaveType, status, actor string) (StatusChange, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return StatusChange{}, ErrNameRequired
	}
	if !ValidStatus(status) {
		return StatusChange{}, ErrInvalidStatus
	}
	pending, err := s.List(ctx, Filter{Name: name, Status: StatusPending})
	if err != nil {
		return StatusChange{}, err
	}
	for _, r := range pending {
		if leaveType == "" || strings.EqualFold(r.LeaveType, leaveType) {
			return s.UpdateStatus(ctx, r.ID, status, actor)
		}
	}
	return StatusChange{}, ErrNoPending
}

func (s *Service) transition(ctx context.Context, match func(LeaveRequest) bool, missing error, status, actor string) (StatusChange, error) {
	if !ValidStatus(status) {
		return StatusChange{}, ErrInvalidStatus
	}
	var previous string
	updated, err := s.requests.Update(ctx, match, func(r *LeaveRequest) error {
		previous = r.Status
		if !canTransition(r.Status, status) {
			return ErrFinalized.WithDetails(map[string]string{"status": r.Status})
		}
		if r.Status == status {
			return errUnchanged
		}
		r.Status = status
		r.UpdatedAt = s.now().UTC()
		return nil
	})
	switch {
	case errors.Is(err, errUnchanged):
		current, _, getErr := s.requests.Find(ctx, match)
		return StatusChange{Request: current, Previous: previous, Actor: actor}, wrapStore(getErr)
	case errors.Is(err, storage.ErrNoMatch):
		return StatusChange{}, missing
	case err != nil:
		return StatusChange{}, wrapStore(err)
	}

	change := StatusChange{Request: updated, Previous: previous, Actor: actor}
	if status == StatusApproved {
		if _, err := s.charge(ctx, updated.Name, updated.Days); err != nil {
			s.log.Error("leave balance not charged", zap.String("id", updated.ID), zap.Error(err))
			return change, err
		}
	}
	s.log.Info("leave status changed",
		zap.String("id", updated.ID),
		zap.String("from", previous),
		zap.String("to", status),
		zap.String("actor", actor),
	)
	if s.notifier != nil {
		s.notifier.LeaveStatusChanged(ctx, change)
	}
	return change, nil
}

var errUnchanged = errors.New("status unchanged")

func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(err)
}
