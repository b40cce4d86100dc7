// Package storage persists whole JSON documents per named collection.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock

type Collection string

const (
	Users          Collection = "users"
	Projects       Collection = "projects"
	ProjectMembers Collection = "project-members"
	Timesheets     Collection = "timesheets"
	LeaveRequests  Collection = "leave-requests"
	LeaveData      Collection = "leave-data"
	Matrices       Collection = "matrices"
	Safety         Collection = "safety"
	Settings       Collection = "settings"
	AuditLog       Collection = "audit-log"
)

// FileName is the on-disk name used by the file driver.
func (c Collection) FileName() string {
	return string(c) + ".json"
}

type State int

const (
	Empty State = iota
	Populated
)

func (s State) String() string {
	if s == Populated {
		return "populated"
	}
	return "empty"
}

// Snapshot is the result of a load. Body is nil when State is Empty.
type Snapshot struct {
	Collection Collection
	State      State
	Body       json.RawMessage
}

func (s Snapshot) Empty() bool {
	return s.State == Empty
}

// Decode unmarshals the body into out. An empty snapshot leaves out untouched.
func (s Snapshot) Decode(out any) error {
	if s.Empty() {
		return nil
	}
	if err := json.Unmarshal(s.Body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, s.Collection, err)
	}
	return nil
}

var (
	// ErrCorrupt marks stored content that exists but cannot be parsed.
	ErrCorrupt = errors.New("collection content is corrupt")
	// ErrNoMatch is returned when an update or delete matched nothing.
	ErrNoMatch = errors.New("no matching record")
)

type Store interface {
	Load(ctx context.Context, c Collection) (Snapshot, error)
	Save(ctx context.Context, c Collection, doc any) error
}

// snapshotFrom classifies raw bytes read from a backend.
func snapshotFrom(c Collection, raw []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Snapshot{Collection: c, State: Empty}, nil
	}
	if !json.Valid(trimmed) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrCorrupt, c)
	}
	return Snapshot{Collection: c, State: Populated, Body: json.RawMessage(trimmed)}, nil
}

func encode(doc any) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
