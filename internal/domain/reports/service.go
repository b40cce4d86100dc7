// Package reports builds the dashboard summaries shown on the admin and
// employee landing pages.
package reports

import (
	"context"
	"strings"

	"worklog/internal/domain/leave"
	"worklog/internal/domain/projects"
	"worklog/internal/domain/users"
	"worklog/internal/platform/apperror"
)

type UserSource interface {
	List(ctx context.Context) ([]users.Profile, error)
}

type ProjectSource interface {
	List(ctx context.Context) ([]projects.Project, error)
}

type LeaveSource interface {
	List(ctx context.Context, f leave.Filter) ([]leave.LeaveRequest, error)
	Available(ctx context.Context, name string) (leave.Availability, error)
}

type AdminDashboard struct {
	Users         int `json:"users"`
	Projects      int `json:"projects"`
	LeavePending  int `json:"leavePending"`
	LeaveApproved int `json:"leaveApproved"`
	LeaveRejected int `json:"leaveRejected"`
}

type EmployeeDashboard struct {
	Name            string               `json:"name"`
	Leave           leave.Availability   `json:"leave"`
	PendingRequests int                  `json:"pendingRequests"`
	Recent          []leave.LeaveRequest `json:"recent"`
}

const recentLimit = 5

type Service struct {
	Users    UserSource
	Projects ProjectSource
	Leave    LeaveSource
}

func NewService(u UserSource, p ProjectSource, l LeaveSource) *Service {
	return &Service{Users: u, Projects: p, Leave: l}
}

func (s *Service) Admin(ctx context.Context) (AdminDashboard, error) {
	people, err := s.Users.List(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	list, err := s.Projects.List(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	requests, err := s.Leave.List(ctx, leave.Filter{})
	if err != nil {
		return AdminDashboard{}, err
	}
	out := AdminDashboard{Users: len(people), Projects: len(list)}
	for _, r := range requests {
		switch r.Status {
		case leave.StatusPending:
			out.LeavePending++
		case leave.StatusApproved:
			out.LeaveApproved++
		case leave.StatusRejected:
			out.LeaveRejected++
		}
	}
	return out, nil
}

// Employee summarizes one employee's leave position.
func (s *Service) Employee(ctx context.Context, name string) (EmployeeDashboard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return EmployeeDashboard{}, apperror.Validation("name is required")
	}
	available, err := s.Leave.Available(ctx, name)
	if err != nil {
		return EmployeeDashboard{}, err
	}
	requests, err := s.Leave.List(ctx, leave.Filter{Name: name})
	if err != nil {
		return EmployeeDashboard{}, err
	}
	out := EmployeeDashboard{Name: name, Leave: available, Recent: requests}
	for _, r := range requests {
		if r.Status == leave.StatusPending {
			out.PendingRequests++
		}
	}
	if len(out.Recent) > recentLimit {
		out.Recent = out.Recent[:recentLimit]
	}
	return out, nil
}
