package checklists

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/platform/storage"
)

var fixedNow = time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

func newBook(kind Kind) *Book {
	return NewBook(kind, storage.NewMemoryStore(), "IND", nil).WithClock(func() time.Time { return fixedNow })
}

func allSafety(value string) map[string]string {
	out := map[string]string{}
	for _, q := range SafetyQuestions {
		out[q] = value
	}
	return out
}

func TestPerformanceSaveCountsRed(t *testing.T) {
	book := newBook(Performance)
	ctx := context.Background()

	rec, err := book.Save(ctx, SaveInput{Employee: "admin", Date: "01-06-2025", Ratings: map[string]string{
		"Performance of the Day": Red,
		"First Time Quality":     Green,
		"On-Time Delivery":       Red,
	}})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", rec.Date)
	assert.Equal(t, 2, rec.RedCount)
	assert.Empty(t, rec.Shift)

	st, err := book.Status(ctx, "admin", "")
	require.NoError(t, err)
	assert.True(t, st.Submitted)
	assert.Equal(t, 2, st.RedCount)

	st, err = book.Status(ctx, "admin", "2025-01-05")
	require.NoError(t, err)
	assert.False(t, st.Submitted)
}

func TestPerformanceRejectsUnknownRating(t *testing.T) {
	book := newBook(Performance)

	_, err := book.Save(context.Background(), SaveInput{Employee: "admin", Ratings: map[string]string{"First Time Quality": "Purple"}})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = book.Save(context.Background(), SaveInput{Employee: "admin"})
	assert.ErrorIs(t, err, ErrRatingsRequired)
}

func TestSafetyRequiresAllQuestions(t *testing.T) {
	book := newBook(Safety)
	ctx := context.Background()

	partial := allSafety(Green)
	delete(partial, SafetyQuestions[3])
	_, err := book.Save(ctx, SaveInput{Employee: "Bhargav", Ratings: partial})
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = book.Save(ctx, SaveInput{Employee: "Bhargav", Ratings: allSafety("Purple")})
	assert.ErrorIs(t, err, ErrInvalidRating)

	rec, err := book.Save(ctx, SaveInput{Employee: "Bhargav", Ratings: allSafety(Red)})
	require.NoError(t, err)
	assert.Equal(t, "IND", rec.Shift)
	assert.Equal(t, len(SafetyQuestions), rec.RedCount)
	assert.Contains(t, rec.ID, "safety-")
}

func TestSafetyAcceptsYellow(t *testing.T) {
	book := newBook(Safety)
	ratings := allSafety(Green)
	ratings[SafetyQuestions[0]] = Yellow

	rec, err := book.Save(context.Background(), SaveInput{Employee: "Bhargav", Ratings: ratings})
	require.NoError(t, err)
	assert.Equal(t, Yellow, rec.Criteria[SafetyQuestions[0]])
	assert.Zero(t, rec.RedCount)
}

func TestRangeUsesKindSpecificField(t *testing.T) {
	ctx := context.Background()
	perf := newBook(Performance)
	safety := newBook(Safety)

	for _, d := range []string{"2025-01-02", "2025-01-04", "2025-02-01"} {
		_, err := perf.Save(ctx, SaveInput{Employee: "a", Date: d, Ratings: map[string]string{"First Time Quality": Green}})
		require.NoError(t, err)
		_, err = safety.Save(ctx, SaveInput{Employee: "a", Date: d, Ratings: allSafety(Green)})
		require.NoError(t, err)
	}

	rows, err := perf.Range(ctx, "a", "01-01-2025", "01-31-2025")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01-02", rows[0].Date)
	assert.NotNil(t, rows[0].Ratings)
	assert.Nil(t, rows[0].SafetyMatrix)

	rows, err = safety.Range(ctx, "a", "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Ratings)
	assert.Len(t, rows[0].SafetyMatrix, len(SafetyQuestions))

	_, err = safety.Range(ctx, "a", "bad", "2025-01-31")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
