// Package audit keeps a capped trail of administrative mutations.
package audit

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worklog/internal/platform/storage"
)

type Event struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	Actor      string
}

func (f Filter) matches(e Event) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.Actor != "" && e.Actor != f.Actor {
		return false
	}
	return true
}

// Entry is the caller-supplied part of an Event.
type Entry struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

type Service struct {
	records   storage.Records[Event]
	maxEvents int
	now       func() time.Time
	log       *zap.Logger
}

func New(store storage.Store, maxEvents int) *Service {
	return &Service{
		records:   storage.NewRecords[Event](store, storage.AuditLog),
		maxEvents: maxEvents,
		now:       time.Now,
		log:       zap.L().Named("audit"),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record appends an event, dropping the oldest ones beyond the cap.
func (s *Service) Record(ctx context.Context, e Entry) error {
	evt := Event{
		ID:         uuid.NewString(),
		Actor:      e.Actor,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		RequestID:  e.RequestID,
		IP:         e.IP,
		CreatedAt:  s.now().UTC(),
	}
	var err error
	if evt.Before, err = marshal(e.Before); err != nil {
		return err
	}
	if evt.After, err = marshal(e.After); err != nil {
		return err
	}

	items, err := s.records.All(ctx)
	if err != nil {
		return err
	}
	items = append(items, evt)
	if s.maxEvents > 0 && len(items) > s.maxEvents {
		items = items[len(items)-s.maxEvents:]
	}
	return s.records.Replace(ctx, items)
}

// Log records e and only logs a failure. Handlers use it so an audit write
// never fails the request that caused it.
func (s *Service) Log(ctx context.Context, e Entry) {
	if s == nil {
		return
	}
	if err := s.Record(ctx, e); err != nil {
		s.log.Warn("audit record failed", zap.String("action", e.Action), zap.Error(err))
	}
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	items, err := s.records.Filter(ctx, filter.matches)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// List returns matching events newest first.
func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	items, err := s.records.Filter(ctx, filter.matches)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if offset >= len(items) {
		return []Event{}, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if !includeDetails {
		for i := range items {
			items[i].Before = nil
			items[i].After = nil
		}
	}
	return items, nil
}

func marshal(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
