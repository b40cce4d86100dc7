package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func TestRecordsLifecycle(t *testing.T) {
	ctx := context.Background()
	recs := NewRecords[widget](NewMemoryStore(), Projects)

	populated, err := recs.Populated(ctx)
	require.NoError(t, err)
	assert.False(t, populated)

	require.NoError(t, recs.Append(ctx, widget{ID: "a", Name: "first"}))
	require.NoError(t, recs.Append(ctx, widget{ID: "b", Name: "second"}))

	got, ok, err := recs.Find(ctx, func(w widget) bool { return w.ID == "b" })
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.Name)

	updated, err := recs.Update(ctx, func(w widget) bool { return w.ID == "a" }, func(w *widget) error {
		return Merge(w, map[string]any{"color": "red"})
	})
	require.NoError(t, err)
	assert.Equal(t, widget{ID: "a", Name: "first", Color: "red"}, updated)

	_, err = recs.Delete(ctx, func(w widget) bool { return w.ID == "zzz" })
	assert.ErrorIs(t, err, ErrNoMatch)
	all, err := recs.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	removed, err := recs.Delete(ctx, func(w widget) bool { return w.ID == "a" })
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	all, err = recs.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []widget{{ID: "b", Name: "second"}}, all)
}

func TestRecordsAcceptsEnvelope(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	mem.Put(Users, []byte(`{"users":[{"id":"1","name":"Admin User"}]}`))

	recs := Records[widget]{Store: mem, Collection: Users, Envelope: "users"}
	all, err := recs.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Admin User", all[0].Name)

	require.NoError(t, recs.Append(ctx, widget{ID: "2", Name: "Bhargav"}))
	snap, err := mem.Load(ctx, Users)
	require.NoError(t, err)
	assert.Equal(t, byte('['), snap.Body[0])
}

func TestRecordsCorruptArray(t *testing.T) {
	mem := NewMemoryStore()
	mem.Put(Projects, []byte(`{"id":"not-an-array"}`))

	_, err := NewRecords[widget](mem, Projects).All(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestMergeKeepsUnspecifiedFields(t *testing.T) {
	w := widget{ID: "1", Name: "before", Color: "blue"}
	require.NoError(t, Merge(&w, map[string]any{"name": "after"}))
	assert.Equal(t, widget{ID: "1", Name: "after", Color: "blue"}, w)
}

func TestGetOrInitPersistsDefault(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	got, err := GetOrInit(ctx, mem, Projects, []widget{})
	require.NoError(t, err)
	assert.Empty(t, got)

	snap, err := mem.Load(ctx, Projects)
	require.NoError(t, err)
	assert.Equal(t, Populated, snap.State)
}
