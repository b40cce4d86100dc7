package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyAcceptsBothLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-01-31", "2025-01-31"},
		{"01-31-2025", "2025-01-31"},
		{"01/31/2025", "2025-01-31"},
		{"2025-01-31T10:00:00Z", "2025-01-31"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			got, err := Key(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKeyRejectsGarbage(t *testing.T) {
	_, err := Key("yesterday")
	assert.Error(t, err)
	_, err = Key("  ")
	assert.Error(t, err)
}

func TestRangeContains(t *testing.T) {
	r, err := ParseRange("01-01-2025", "2025-01-07")
	require.NoError(t, err)

	assert.True(t, r.Contains("2025-01-01"))
	assert.True(t, r.Contains("01-07-2025"))
	assert.False(t, r.Contains("2025-01-08"))
	assert.False(t, r.Contains("not-a-date"))

	_, err = ParseRange("2025-02-01", "2025-01-01")
	assert.Error(t, err)
}

func TestKeyOrToday(t *testing.T) {
	now := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)
	kolkata := time.FixedZone("IST", 5*3600+1800)

	got, err := KeyOrToday("", now, kolkata)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", got)

	got, err = KeyOrToday("03-01-2025", now, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", got)
}

func TestInclusiveDays(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, InclusiveDays(start, start))
	assert.Equal(t, 3, InclusiveDays(start, start.AddDate(0, 0, 2)))
	assert.Equal(t, 0, InclusiveDays(start, start.AddDate(0, 0, -1)))
}
