package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/domain/leave"
	"worklog/internal/domain/projects"
	"worklog/internal/domain/users"
	"worklog/internal/platform/storage"
)

func TestAdminDashboardCounts(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	usersSvc := users.NewService(store)
	projectsSvc := projects.NewService(store)
	leaveSvc := leave.NewService(store, 20)

	_, err := usersSvc.Create(ctx, users.CreateInput{Name: "Asha", Email: "asha@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = projectsSvc.Create(ctx, projects.CreateInput{ProjectNumber: "P-1", ProjectName: "Line"})
	require.NoError(t, err)
	first, err := leaveSvc.Submit(ctx, leave.SubmitInput{Name: "Asha", StartDate: "2025-03-10", LeaveType: "Sick"})
	require.NoError(t, err)
	_, err = leaveSvc.Submit(ctx, leave.SubmitInput{Name: "Asha", StartDate: "2025-03-12", LeaveType: "Sick"})
	require.NoError(t, err)
	_, err = leaveSvc.UpdateStatus(ctx, first.ID, leave.StatusApproved, "admin")
	require.NoError(t, err)

	svc := NewService(usersSvc, projectsSvc, leaveSvc)
	admin, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, AdminDashboard{Users: 1, Projects: 1, LeavePending: 1, LeaveApproved: 1}, admin)

	emp, err := svc.Employee(ctx, "Asha")
	require.NoError(t, err)
	assert.Equal(t, 1, emp.PendingRequests)
	assert.Equal(t, float64(19), emp.Leave.RemainingLeaves)
	assert.Len(t, emp.Recent, 2)

	_, err = svc.Employee(ctx, " ")
	assert.Error(t, err)
}
