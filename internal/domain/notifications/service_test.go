package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/domain/leave"
	"worklog/internal/domain/settings"
	"worklog/internal/domain/users"
	"worklog/internal/platform/events"
	"worklog/internal/platform/metrics"
	"worklog/internal/requestctx"
)

type directory map[string]users.User

func (d directory) Account(_ context.Context, l users.Lookup) (users.User, error) {
	u, ok := d[l.Value]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

type prefs settings.Settings

func (p prefs) Get(context.Context) (settings.Settings, error) { return settings.Settings(p), nil }

type mail struct {
	to, subject, body string
	count             int
}

func (m *mail) Send(_ context.Context, _, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.count++
	return nil
}

type publisher struct {
	events []events.Event
}

func (p *publisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *publisher) Close() error { return nil }

type inlineQueue struct {
	errs []error
}

func (q *inlineQueue) Enqueue(_ string, run func(context.Context) error) bool {
	if err := run(context.Background()); err != nil {
		q.errs = append(q.errs, err)
	}
	return true
}

func fixture(enabled bool) (*Service, *mail, *publisher, *inlineQueue, *metrics.Collector) {
	m := &mail{}
	p := &publisher{}
	q := &inlineQueue{}
	c := metrics.New()
	dir := directory{"Ana": {Name: "Ana", Email: "ana@example.com"}, "Admin User": {Name: "Admin User", Email: "admin"}}
	svc := New(dir, prefs(settings.Settings{CompanyName: "Acme", EmailNotifications: enabled}), m, p, q).WithMetrics(c)
	return svc, m, p, q, c
}

func TestApprovalSendsMailAndEvent(t *testing.T) {
	svc, m, p, q, c := fixture(true)
	ctx := requestctx.WithRequestID(context.Background(), "req-9")

	svc.LeaveStatusChanged(ctx, leave.StatusChange{
		Request:  leave.LeaveRequest{ID: "l1", Name: "Ana", Status: leave.StatusApproved, Days: 2, LeaveType: "Vacation"},
		Previous: leave.StatusPending,
		Actor:    "admin",
	})

	assert.Empty(t, q.errs)
	assert.Equal(t, 1, m.count)
	assert.Equal(t, "ana@example.com", m.to)
	assert.Equal(t, "Acme: Leave request approved", m.subject)
	assert.Contains(t, m.body, "deducted")

	require.Len(t, p.events, 1)
	assert.Equal(t, events.TypeLeaveStatusChanged, p.events[0].Type)
	assert.Equal(t, "req-9", p.events[0].RequestID)

	counters := c.Snapshot()["counters"].(map[string]uint64)
	assert.Equal(t, uint64(1), counters["leave.approved"])
	assert.Equal(t, uint64(1), counters["email.sent"])
}

func TestNoMailWhenDisabledOrNoAddress(t *testing.T) {
	svc, m, p, _, _ := fixture(false)
	svc.LeaveStatusChanged(context.Background(), leave.StatusChange{
		Request:  leave.LeaveRequest{ID: "l1", Name: "Ana", Status: leave.StatusRejected},
		Previous: leave.StatusPending,
	})
	assert.Zero(t, m.count)
	assert.Len(t, p.events, 1)

	svc, m, _, _, _ = fixture(true)
	svc.LeaveStatusChanged(context.Background(), leave.StatusChange{
		Request:  leave.LeaveRequest{ID: "l2", Name: "Admin User", Status: leave.StatusRejected},
		Previous: leave.StatusPending,
	})
	assert.Zero(t, m.count)
}

func TestUnchangedStatusIsSilent(t *testing.T) {
	svc, m, p, _, _ := fixture(true)
	svc.LeaveStatusChanged(context.Background(), leave.StatusChange{
		Request:  leave.LeaveRequest{ID: "l1", Name: "Ana", Status: leave.StatusApproved},
		Previous: leave.StatusApproved,
	})
	assert.Zero(t, m.count)
	assert.Empty(t, p.events)
}

func TestUnknownRecipientIsNotAnError(t *testing.T) {
	svc, m, _, q, _ := fixture(true)
	svc.LeaveStatusChanged(context.Background(), leave.StatusChange{
		Request:  leave.LeaveRequest{ID: "l1", Name: "Ghost", Status: leave.StatusApproved},
		Previous: leave.StatusPending,
	})
	assert.Zero(t, m.count)
	for _, err := range q.errs {
		assert.False(t, errors.Is(err, users.ErrNotFound))
	}
}
