package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"worklog/internal/platform/storage"
	"worklog/internal/platform/storage/mock"
)

type entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestRecordsSurfacesSaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	boom := errors.New("disk full")

	store.EXPECT().
		Load(gomock.Any(), storage.Projects).
		Return(storage.Snapshot{Collection: storage.Projects, State: storage.Populated, Body: []byte(`[{"id":"a","name":"x"}]`)}, nil)
	store.EXPECT().
		Save(gomock.Any(), storage.Projects, gomock.Any()).
		Return(boom)

	recs := storage.NewRecords[entry](store, storage.Projects)
	_, err := recs.Update(context.Background(), func(e entry) bool { return e.ID == "a" }, func(e *entry) error {
		e.Name = "y"
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestRecordsLoadFailureSkipsSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)

	store.EXPECT().
		Load(gomock.Any(), storage.Users).
		Return(storage.Snapshot{}, storage.ErrCorrupt)

	err := storage.NewRecords[entry](store, storage.Users).Append(context.Background(), entry{ID: "1"})
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}
