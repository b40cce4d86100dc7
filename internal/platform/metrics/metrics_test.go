package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(404, 20*time.Millisecond)
	c.Record(429, 0)
	c.Record(500, 30*time.Millisecond)
	c.Incr("leave.approved")
	c.Incr("leave.approved")

	snap := c.Snapshot()
	assert.Equal(t, uint64(4), snap["requestsTotal"])
	assert.Equal(t, uint64(2), snap["clientErrorsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
	assert.Equal(t, float64(15), snap["avgDurationMs"])
	assert.Equal(t, map[string]uint64{"leave.approved": 2}, snap["counters"])
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(200, time.Millisecond)
	c.Incr("x")
}
