package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppMetrics_Exposed(t *testing.T) {
	reg := NewRegistry()
	m := NewAppMetrics(reg)

	m.FilesTotal.WithLabelValues("ok").Inc()
	m.RecordsTotal.WithLabelValues("kept").Add(3)
	m.DiagnosticsTotal.WithLabelValues("framing").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("kept")))

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `cdr_records_total{result="kept"} 3`)
	assert.Contains(t, rr.Body.String(), `cdr_diagnostics_total{kind="framing"} 1`)
}
