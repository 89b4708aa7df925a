package worker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/infrastructure/metrics"
)

func TestMetricsHandler_ServesRescoreCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRescore("ok", 3)

	w := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tourreg_rescore_runs_total{result="ok"} 1`)
	assert.Contains(t, w.Body.String(), "tourreg_rescore_changed_total 3")
}

func TestMetricsHandler_OnlyMetricsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	MetricsHandler(prometheus.NewRegistry()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
