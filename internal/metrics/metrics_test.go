package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/selection", http.MethodPost, 200, 10*time.Millisecond)
	m.ObserveRequest("/api/selection", http.MethodPost, 200, 20*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/selection", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestObserveUpload(t *testing.T) {
	m := New()
	m.ObserveUpload(OutcomeOK, 1200, time.Second)
	m.ObserveUpload(OutcomeFailed, 0, time.Second)
	m.ObserveUpload(OutcomeRejected, 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.uploadRows))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", "GET", 200, time.Second)
		m.ObserveUpload(OutcomeOK, 1, time.Second)
		m.ObserveExport("download")
		m.ObserveFigure(1)
		m.RegisterGauge("sessions", "", func() float64 { return 0 })
	})
}

func TestHandlerExposesGauge(t *testing.T) {
	m := New()
	m.RegisterGauge("active_sessions", "Live dashboard sessions.", func() float64 { return 3 })
	m.ObserveFigure(2)
	m.ObserveExport("download")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	assert.True(t, strings.Contains(text, "nsqip_active_sessions 3"), text)
	assert.Contains(t, text, `nsqip_figure_downloads_total{figure="2"} 1`)
	assert.Contains(t, text, `nsqip_exports_total{destination="download"} 1`)
}
