// Package jobs runs background work off the request path.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	JobLeaveNotification = "leave_notification"
	JobEventPublish      = "event_publish"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded execution.
type Run struct {
	ID          string    `json:"id"`
	Type        string    `json:"jobType"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitzero"`
}

type Service struct {
	queue   chan job
	history int
	log     *zap.Logger

	mu   sync.Mutex
	runs []Run
	wg   sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) error
}

// New returns a service with the given queue size, remembering the last
// history runs.
func New(queueSize, history int) *Service {
	if queueSize <= 0 {
		queueSize = 128
	}
	if history <= 0 {
		history = 100
	}
	return &Service{
		queue:   make(chan job, queueSize),
		history: history,
		log:     zap.L().Named("jobs"),
	}
}

// Start launches the worker. It drains nothing after ctx is cancelled; call
// Wait to block until the worker has returned.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
}

func (s *Service) Wait() {
	s.wg.Wait()
}

// Enqueue schedules run and drops it with a warning when the queue is full.
func (s *Service) Enqueue(jobType string, run func(context.Context) error) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		s.log.Warn("job queue full", zap.String("jobType", jobType))
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) error) error {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// Runs returns recorded executions, newest first.
func (s *Service) Runs() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, len(s.runs))
	for i, r := range s.runs {
		out[len(s.runs)-1-i] = r
	}
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if err := s.runJob(ctx, j); err != nil {
				s.log.Warn("job run failed", zap.String("jobType", j.Type), zap.Error(err))
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) error {
	run := Run{ID: uuid.NewString(), Type: j.Type, Status: StatusRunning, StartedAt: time.Now().UTC()}
	err := j.Run(ctx)
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	}
	run.CompletedAt = time.Now().UTC()
	s.record(run)
	return err
}

func (s *Service) record(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if len(s.runs) > s.history {
		s.runs = s.runs[len(s.runs)-s.history:]
	}
}
