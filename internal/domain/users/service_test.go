package users

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/domain/auth"
	"worklog/internal/platform/storage"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewService(mem).WithClock(func() time.Time { return fixed }), mem
}

func TestCreateThenFindByEveryKey(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Bhargav", Email: "bhargav", Password: "BNG"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, auth.RoleUser, created.Role)
	assert.Equal(t, "2025-01-02T03:04:05Z", created.CreatedAt)

	for _, lookup := range []Lookup{ByID(created.ID), ByEmail("BHARGAV"), ByName(" bhargav ")} {
		got, err := svc.Get(ctx, lookup)
		require.NoError(t, err, lookup.Field)
		assert.Equal(t, created.ID, got.ID)
	}
}

func TestCreateRejectsDuplicateAndMissing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@x", Password: "p"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "B", Email: "A@X", Password: "p"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.Create(ctx, CreateInput{Name: "C", Email: "c@x"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Create(ctx, CreateInput{Name: "D", Email: "d@x", Password: "p", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestPasswordIsNeverStoredInPlaintext(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@x", Password: "hunter2"})
	require.NoError(t, err)

	snap, err := mem.Load(ctx, storage.Users)
	require.NoError(t, err)
	assert.NotContains(t, string(snap.Body), "hunter2")

	acct, err := svc.Account(ctx, ByID(created.ID))
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(acct.PasswordHash, "hunter2"))

	raw, err := json.Marshal(created)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}

func TestUpdateMergesAndRehashes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@x", Password: "old", Country: "India"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, ByEmail("a@x"), map[string]any{
		"designation":   "Engineer",
		"password":      "new",
		"id":            "hijack",
		"manager_email": "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "India", updated.Country)
	assert.Equal(t, "Engineer", updated.Designation)
	assert.Equal(t, "admin", updated.ManagerEmail)

	acct, err := svc.Account(ctx, ByID(created.ID))
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(acct.PasswordHash, "new"))
	assert.Error(t, auth.CheckPassword(acct.PasswordHash, "old"))
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@x", Password: "p"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "B", Email: "b@x", Password: "p"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ByEmail("a@x"), map[string]any{"role": "root"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Update(ctx, ByEmail("a@x"), map[string]any{"email": "b@x"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.Update(ctx, ByEmail("nobody"), map[string]any{"country": "US"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingKeepsCollection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@x", Password: "p"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, ByName("ghost"))
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err := svc.Delete(ctx, ByName("A"))
	require.NoError(t, err)
	assert.Equal(t, "a@x", removed.Email)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLegacyDocumentIsNormalized(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("BNG")
	require.NoError(t, err)

	legacy, err := json.Marshal(map[string]any{"users": []map[string]any{{
		"id":            "7",
		"name":          "Bhargav",
		"email":         "bhargav",
		"password":      hash,
		"manager_email": "admin",
	}}})
	require.NoError(t, err)
	mem.Put(storage.Users, legacy)

	acct, err := svc.Account(ctx, ByEmail("bhargav"))
	require.NoError(t, err)
	assert.Equal(t, hash, acct.PasswordHash)
	assert.Equal(t, "admin", acct.ManagerEmail)
	assert.Equal(t, auth.RoleUser, acct.Role)
}

func TestEnsureSeedOnlyWhenEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seeds := []Seed{{Name: "Admin User", Email: "admin", Password: "admin", Role: auth.RoleAdmin, Country: "India"}}

	wrote, err := svc.EnsureSeed(ctx, seeds)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = svc.EnsureSeed(ctx, seeds)
	require.NoError(t, err)
	assert.False(t, wrote)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, auth.RoleAdmin, list[0].Role)
}

func TestCorruptCollectionIsInternal(t *testing.T) {
	svc, mem := newTestService(t)
	mem.Put(storage.Users, []byte(`[{"id":`))

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}
