package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Records treats a collection as a JSON array of T.
//
// Envelope names an object key that older writers wrapped the array in
// (for example {"users": [...]}); loads accept both shapes and saves always
// write the bare array.
type Records[T any] struct {
	Store      Store
	Collection Collection
	Envelope   string
}

func NewRecords[T any](store Store, c Collection) Records[T] {
	return Records[T]{Store: store, Collection: c}
}

// All returns every record. An empty collection yields a nil slice.
func (r Records[T]) All(ctx context.Context) ([]T, error) {
	items, _, err := r.load(ctx)
	return items, err
}

// Populated reports whether the collection exists at all.
func (r Records[T]) Populated(ctx context.Context) (bool, error) {
	_, populated, err := r.load(ctx)
	return populated, err
}

func (r Records[T]) load(ctx context.Context) ([]T, bool, error) {
	snap, err := r.Store.Load(ctx, r.Collection)
	if err != nil {
		return nil, false, err
	}
	if snap.Empty() {
		return nil, false, nil
	}
	body := snap.Body
	if r.Envelope != "" && len(body) > 0 && body[0] == '{' {
		wrapped := map[string]json.RawMessage{}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, true, fmt.Errorf("%w: %s: %v", ErrCorrupt, r.Collection, err)
		}
		body = bytes.TrimSpace(wrapped[r.Envelope])
		if len(body) == 0 {
			return nil, true, nil
		}
	}
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrCorrupt, r.Collection, err)
	}
	return items, true, nil
}

// Replace writes items as the whole collection.
func (r Records[T]) Replace(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return r.Store.Save(ctx, r.Collection, items)
}

// Find returns the first record satisfying match.
func (r Records[T]) Find(ctx context.Context, match func(T) bool) (T, bool, error) {
	var zero T
	items, err := r.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if match(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Filter returns every record satisfying match.
func (r Records[T]) Filter(ctx context.Context, match func(T) bool) ([]T, error) {
	items, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Append adds item to the end of the collection.
func (r Records[T]) Append(ctx context.Context, item T) error {
	items, err := r.All(ctx)
	if err != nil {
		return err
	}
	return r.Replace(ctx, append(items, item))
}

// Update applies mutate to the first record satisfying match and persists
// the collection. It returns ErrNoMatch when nothing matched.
func (r Records[T]) Update(ctx context.Context, match func(T) bool, mutate func(*T) error) (T, error) {
	var zero T
	items, err := r.All(ctx)
	if err != nil {
		return zero, err
	}
	for i := range items {
		if !match(items[i]) {
			continue
		}
		if err := mutate(&items[i]); err != nil {
			return zero, err
		}
		if err := r.Replace(ctx, items); err != nil {
			return zero, err
		}
		return items[i], nil
	}
	return zero, ErrNoMatch
}

// Delete removes every record satisfying match and returns the removed ones.
// The collection is left untouched and ErrNoMatch returned when the length
// would not change.
func (r Records[T]) Delete(ctx context.Context, match func(T) bool) ([]T, error) {
	items, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]T, 0, len(items))
	var removed []T
	for _, item := range items {
		if match(item) {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	if len(removed) == 0 {
		return nil, ErrNoMatch
	}
	if err := r.Replace(ctx, kept); err != nil {
		return nil, err
	}
	return removed, nil
}
