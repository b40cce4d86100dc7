// Package notifications fans leave activity out to email and the event
// stream on the background queue.
package notifications

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"worklog/internal/domain/leave"
	"worklog/internal/domain/settings"
	"worklog/internal/domain/users"
	"worklog/internal/platform/email"
	"worklog/internal/platform/events"
	"worklog/internal/platform/jobs"
	"worklog/internal/platform/metrics"
	"worklog/internal/requestctx"
)

type Directory interface {
	Account(ctx context.Context, lookup users.Lookup) (users.User, error)
}

type Preferences interface {
	Get(ctx context.Context) (settings.Settings, error)
}

type Queue interface {
	Enqueue(jobType string, run func(context.Context) error) bool
}

type Service struct {
	Directory   Directory
	Preferences Preferences
	Mailer      email.Mailer
	Events      events.Publisher
	Queue       Queue
	Metrics     *metrics.Collector
	DefaultFrom string
	log         *zap.Logger
}

func New(dir Directory, prefs Preferences, mailer email.Mailer, pub events.Publisher, queue Queue) *Service {
	return &Service{
		Directory:   dir,
		Preferences: prefs,
		Mailer:      mailer,
		Events:      pub,
		Queue:       queue,
		DefaultFrom: "no-reply@example.com",
		log:         zap.L().Named("notifications"),
	}
}

func (s *Service) WithMetrics(m *metrics.Collector) *Service {
	s.Metrics = m
	return s
}

// LeaveStatusChanged emails the employee and publishes an event when a
// request actually moved.
func (s *Service) LeaveStatusChanged(ctx context.Context, change leave.StatusChange) {
	if !change.Changed() {
		return
	}
	ntype := typeFor(change.Request.Status)
	s.Metrics.Incr("leave." + strings.ToLower(change.Request.Status))
	requestID := requestctx.GetRequestID(ctx)
	req := change.Request

	s.Queue.Enqueue(jobs.JobLeaveNotification, func(ctx context.Context) error {
		return s.mailEmployee(ctx, req, ntype)
	})
	s.publish(events.Event{
		Type:        events.TypeLeaveStatusChanged,
		AggregateID: req.ID,
		RequestID:   requestID,
		Data: map[string]any{
			"notification": ntype,
			"name":         req.Name,
			"from":         change.Previous,
			"to":           req.Status,
			"actor":        change.Actor,
			"days":         req.Days,
		},
	})
}

// LeaveSubmitted publishes the new request.
func (s *Service) LeaveSubmitted(ctx context.Context, req leave.LeaveRequest) {
	s.Metrics.Incr("leave.submitted")
	s.publish(events.Event{
		Type:        events.TypeLeaveSubmitted,
		AggregateID: req.ID,
		RequestID:   requestctx.GetRequestID(ctx),
		Data:        req,
	})
}

// Publish sends an arbitrary event through the queue.
func (s *Service) Publish(ctx context.Context, event events.Event) {
	if event.RequestID == "" {
		event.RequestID = requestctx.GetRequestID(ctx)
	}
	s.publish(event)
}

func (s *Service) publish(event events.Event) {
	if s.Events == nil {
		return
	}
	s.Queue.Enqueue(jobs.JobEventPublish, func(ctx context.Context) error {
		return s.Events.Publish(ctx, event)
	})
}

func (s *Service) mailEmployee(ctx context.Context, req leave.LeaveRequest, ntype string) error {
	if s.Mailer == nil {
		return nil
	}
	prefs, err := s.Preferences.Get(ctx)
	if err != nil {
		return err
	}
	if !prefs.EmailNotifications {
		return nil
	}
	user, err := s.Directory.Account(ctx, users.ByName(req.Name))
	if err != nil {
		s.log.Warn("notification recipient lookup failed", zap.String("name", req.Name), zap.Error(err))
		return nil
	}
	if !strings.Contains(user.Email, "@") {
		return nil
	}
	subject, body := compose(prefs.CompanyName, req, ntype)
	if err := s.Mailer.Send(ctx, s.DefaultFrom, user.Email, subject, body); err != nil {
		s.log.Warn("notification email send failed", zap.String("to", user.Email), zap.Error(err))
		return err
	}
	s.Metrics.Incr("email.sent")
	return nil
}

func typeFor(status string) string {
	switch status {
	case leave.StatusApproved:
		return TypeLeaveApproved
	case leave.StatusRejected:
		return TypeLeaveRejected
	default:
		return TypeLeaveReopened
	}
}

func compose(company string, req leave.LeaveRequest, ntype string) (string, string) {
	subject := fmt.Sprintf("Leave request %s", strings.ToLower(req.Status))
	if company != "" {
		subject = company + ": " + subject
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nYour %s leave from %s to %s (%g day(s)) is now %s.\n",
		req.Name, req.LeaveType, req.StartDate, req.EndDate, req.Days, req.Status,
	)
	if ntype == TypeLeaveApproved {
		body += "\nThe days have been deducted from your leave balance.\n"
	}
	return subject, body
}
