package leave

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/platform/storage"
)

type recordingNotifier struct {
	changes []StatusChange
}

func (n *recordingNotifier) LeaveStatusChanged(_ context.Context, c StatusChange) {
	n.changes = append(n.changes, c)
}

func newService() (*Service, *recordingNotifier) {
	n := &recordingNotifier{}
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(storage.NewMemoryStore(), 20).
		WithNotifier(n).
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		})
	return svc, n
}

func TestSubmitDefaults(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	req, err := svc.Submit(ctx, SubmitInput{Name: "Bhargav", StartDate: "03-10-2025", LeaveType: "Sick"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, float64(1), req.Days)
	assert.Equal(t, "2025-03-10", req.StartDate)
	assert.Equal(t, req.StartDate, req.EndDate)
	assert.NotEmpty(t, req.ID)

	ranged, err := svc.Submit(ctx, SubmitInput{Name: "Bhargav", StartDate: "2025-03-10", EndDate: "2025-03-12", LeaveType: "Vacation"})
	require.NoError(t, err)
	assert.Equal(t, float64(3), ranged.Days)

	_, err = svc.Submit(ctx, SubmitInput{Name: "Bhargav", LeaveType: "Sick"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Submit(ctx, SubmitInput{Name: "Bhargav", StartDate: "2025-03-12", EndDate: "2025-03-10", LeaveType: "Sick"})
	assert.ErrorIs(t, err, ErrInvalidDates)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ranged.ID, all[0].ID)
}

func TestLifecycleApprovalChargesBalance(t *testing.T) {
	svc, notes := newService()
	ctx := context.Background()

	req, err := svc.Submit(ctx, SubmitInput{Name: "Ana", StartDate: "2025-04-01", Days: 2, LeaveType: "Vacation"})
	require.NoError(t, err)

	change, err := svc.UpdateStatus(ctx, req.ID, StatusApproved, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, change.Previous)
	assert.Equal(t, StatusApproved, change.Request.Status)
	require.Len(t, notes.changes, 1)

	avail, err := svc.Available(ctx, "Ana")
	require.NoError(t, err)
	assert.Equal(t, float64(20), avail.TotalLeaves)
	assert.Equal(t, float64(2), avail.UsedLeaves)
	assert.Equal(t, float64(18), avail.RemainingLeaves)

	again, err := svc.UpdateStatus(ctx, req.ID, StatusApproved, "admin")
	require.NoError(t, err)
	assert.False(t, again.Changed())
	assert.Len(t, notes.changes, 1)

	avail, err = svc.Available(ctx, "Ana")
	require.NoError(t, err)
	assert.Equal(t, float64(2), avail.UsedLeaves)

	_, err = svc.UpdateStatus(ctx, req.ID, StatusRejected, "admin")
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	req, err := svc.Submit(ctx, SubmitInput{Name: "Ana", StartDate: "2025-04-01", LeaveType: "Sick"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, req.ID, "Bogus", "admin")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	_, err = svc.UpdateStatus(ctx, "missing", StatusApproved, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusByNamePicksLatestPending(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitInput{Name: "Ana", StartDate: "2025-04-01", LeaveType: "Sick"})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, SubmitInput{Name: "Ana", StartDate: "2025-04-05", LeaveType: "Vacation"})
	require.NoError(t, err)

	change, err := svc.UpdateStatusByName(ctx, "Ana", "", StatusRejected, "admin")
	require.NoError(t, err)
	assert.Equal(t, second.ID, change.Request.ID)

	change, err = svc.UpdateStatusByName(ctx, "Ana", "sick", StatusApproved, "admin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, change.Request.ID)

	_, err = svc.UpdateStatusByName(ctx, "Ana", "", StatusApproved, "admin")
	assert.ErrorIs(t, err, ErrNoPending)
}

func TestAvailableCreatesBalanceOnce(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Available(ctx, "New Hire")
	require.NoError(t, err)
	_, err = svc.Available(ctx, "New Hire")
	require.NoError(t, err)

	all, err := svc.Balances(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, float64(20), all[0].RemainingLeaves)

	_, err = svc.Available(ctx, " ")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestUpdatedAtOnlyAfterDecision(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	req, err := svc.Submit(ctx, SubmitInput{Name: "Asha", StartDate: "2025-03-10", LeaveType: "Sick"})
	require.NoError(t, err)
	pending, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(pending), "updatedAt")

	change, err := svc.UpdateStatus(ctx, req.ID, StatusApproved, "admin")
	require.NoError(t, err)
	decided, err := json.Marshal(change.Request)
	require.NoError(t, err)
	assert.Contains(t, string(decided), `"updatedAt"`)
}
