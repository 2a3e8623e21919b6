package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("provision", "created", "")
	m.RecordRequest("provision", "created", "")
	m.RecordRequest("provision", "failed", "permission_denied")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("provision", "created", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("provision", "failed", "permission_denied")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Requests)
	assert.Equal(t, int64(1), snap.Failures)
}

func TestRecordBatch(t *testing.T) {
	m := NewMetrics()

	m.RecordBatch("remove", 2, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesTotal.WithLabelValues("remove")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchFailed.WithLabelValues("remove")))
	assert.Greater(t, testutil.ToFloat64(m.LastRun), 0.0)
	assert.Equal(t, int64(1), m.Snapshot().Batches)
}

func TestSeparateRegistries(t *testing.T) {
	// Two collectors must not collide on registration
	a := NewMetrics()
	b := NewMetrics()

	a.RecordRequest("provision", "created", "")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RequestsTotal.WithLabelValues("provision", "created", "")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("provision", "already_exists", "")
	m.RecordBatch("provision", 0, time.Millisecond)

	path := filepath.Join(t.TempDir(), "pipeprov.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pipeprov_requests_total")
	assert.Contains(t, string(data), `outcome="already_exists"`)
}

func TestWriteTextfileMissingDir(t *testing.T) {
	m := NewMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "pipeprov.prom"))
	assert.Error(t, err)
}
