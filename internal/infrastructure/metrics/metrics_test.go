package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.SnapshotComputed(20 * time.Millisecond)
	m.SnapshotComputed(30 * time.Millisecond)
	m.SnapshotSkipped()
	m.SnapshotFailed()
	m.MatchOverflow("head_bo")
	m.MatchOverflow("head_bo")
	m.MatchOverflow("founder_bo")

	assert.InDelta(t, 2, testutil.ToFloat64(m.SnapshotsComputed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotsSkipped), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotsFailed), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.MatchOverflows.WithLabelValues("head_bo")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MatchOverflows.WithLabelValues("founder_bo")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.SnapshotDuration))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SnapshotComputed(time.Second)
		m.SnapshotSkipped()
		m.SnapshotFailed()
		m.MatchOverflow("head_founder")
	})
}

func TestMetrics_InstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.SnapshotSkipped()

	assert.InDelta(t, 0, testutil.ToFloat64(b.SnapshotsSkipped), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.MatchOverflow("head_founder")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `edrdr_match_overflows_total{comparison="head_founder"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
