package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Get decodes collection c into out and reports whether it was populated.
func Get(ctx context.Context, s Store, c Collection, out any) (bool, error) {
	snap, err := s.Load(ctx, c)
	if err != nil {
		return false, err
	}
	if snap.Empty() {
		return false, nil
	}
	if err := snap.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// GetOrInit returns the stored document, persisting def first when the
// collection is empty.
func GetOrInit[T any](ctx context.Context, s Store, c Collection, def T) (T, error) {
	var out T
	found, err := Get(ctx, s, c, &out)
	if err != nil {
		return out, err
	}
	if found {
		return out, nil
	}
	if err := s.Save(ctx, c, def); err != nil {
		return def, err
	}
	return def, nil
}

// Merge overlays patch onto dst through their JSON forms. Keys present in
// patch replace the ones in dst; everything else is kept.
func Merge(dst any, patch map[string]any) error {
	raw, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	base := map[string]any{}
	if err := json.Unmarshal(raw, &base); err != nil {
		return fmt.Errorf("merge target is not an object: %w", err)
	}
	for k, v := range patch {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, dst)
}
