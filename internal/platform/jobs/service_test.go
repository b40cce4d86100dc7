package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNowRecordsOutcome(t *testing.T) {
	svc := New(1, 2)
	ctx := context.Background()

	require.NoError(t, svc.RunNow(ctx, "a", func(context.Context) error { return nil }))
	err := svc.RunNow(ctx, "b", func(context.Context) error { return errors.New("boom") })
	require.Error(t, err)
	require.NoError(t, svc.RunNow(ctx, "c", func(context.Context) error { return nil }))

	runs := svc.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].Type)
	assert.Equal(t, StatusFailed, runs[1].Status)
	assert.Equal(t, "boom", runs[1].Error)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	svc := New(1, 10)
	assert.True(t, svc.Enqueue("first", func(context.Context) error { return nil }))
	assert.False(t, svc.Enqueue("second", func(context.Context) error { return nil }))
}

func TestEnqueueRunsOnWorker(t *testing.T) {
	svc := New(4, 10)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)

	done := make(chan struct{})
	require.True(t, svc.Enqueue("signal", func(context.Context) error { close(done); return nil }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	cancel()
	svc.Wait()
}
