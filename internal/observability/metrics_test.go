package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/dashboard", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/dashboard", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/modal/submit", "POST", "GATEWAY_ERROR")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/dashboard|GET|200"])
	assert.Equal(t, int64(20), snap.AvgLatencyMS["/api/dashboard|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/modal/submit|POST|GATEWAY_ERROR"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}
