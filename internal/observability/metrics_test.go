package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBatch(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.RecordBatch("ok", 5, 2)
	m.RecordBatch("ok", 0, 0)
	m.RecordBatch("error", 0, 0)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.ScansIngested))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DuplicateScans))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncBatches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncBatches.WithLabelValues("error")))
}

func TestNewMetricsRegistersCollectors(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.RecordBatch("ok", 1, 1)
	m.RequestLatency.WithLabelValues("/api/sync").Observe(0.01)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
