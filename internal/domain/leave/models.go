package leave

import "time"

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// ValidStatus reports whether s is one of the three request states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type LeaveRequest struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Days           float64   `json:"days"`
	Hours          float64   `json:"hours,omitempty"`
	StartDate      string    `json:"startDate"`
	EndDate        string    `json:"endDate"`
	LeaveType      string    `json:"leaveType"`
	Reason         string    `json:"reason"`
	SubmissionDate string    `json:"submissionDate"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

type SubmitInput struct {
	Name           string  `json:"name" validate:"required"`
	Days           float64 `json:"days" validate:"gte=0"`
	Hours          float64 `json:"hours" validate:"gte=0"`
	StartDate      string  `json:"startDate" validate:"required"`
	EndDate        string  `json:"endDate"`
	LeaveType      string  `json:"leaveType" validate:"required"`
	Reason         string  `json:"reason"`
	SubmissionDate string  `json:"submissionDate"`
}

type Filter struct {
	Name   string
	Status string
}

func (f Filter) matches(r LeaveRequest) bool {
	if f.Name != "" && r.Name != f.Name {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Balance is one employee's allowance.
type Balance struct {
	Name        string  `json:"name"`
	TotalLeaves float64 `json:"totalLeaves"`
	UsedLeaves  float64 `json:"usedLeaves"`
}

// Availability is a Balance plus the derived remainder.
type Availability struct {
	Name            string  `json:"name"`
	TotalLeaves     float64 `json:"totalLeaves"`
	UsedLeaves      float64 `json:"usedLeaves"`
	RemainingLeaves float64 `json:"remainingLeaves"`
}

func (b Balance) Availability() Availability {
	return Availability{
		Name:            b.Name,
		TotalLeaves:     b.TotalLeaves,
		UsedLeaves:      b.UsedLeaves,
		RemainingLeaves: b.TotalLeaves - b.UsedLeaves,
	}
}

// BalanceSheet is the stored leave-data document.
type BalanceSheet struct {
	Users              []Balance `json:"users"`
	DefaultTotalLeaves float64   `json:"defaultTotalLeaves"`
}

// StatusChange describes one applied transition.
type StatusChange struct {
	Request  LeaveRequest
	Previous string
	Actor    string
}

// Changed reports whether the status actually moved.
func (c StatusChange) Changed() bool {
	return c.Previous != c.Request.Status
}
