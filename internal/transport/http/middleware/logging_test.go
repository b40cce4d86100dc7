package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"worklog/internal/platform/metrics"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestLoggerFeedsCollector(t *testing.T) {
	c := metrics.New()
	h := Logger(zapNop(), c)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	snap := c.Snapshot()
	assert.Equal(t, uint64(1), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["clientErrorsTotal"])
}
