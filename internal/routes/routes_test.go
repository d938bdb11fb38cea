package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wifiprober/internal/controllers"
	"wifiprober/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRoutesRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &controllers.Handlers{}
	RegisterAPIRoutes(r, h)
	RegisterStreamRoutes(r, h)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /api/health",
		"GET /api/live",
		"GET /api/live/history",
		"GET /api/wifi_ip",
		"GET /api/summary",
		"GET /api/outages",
		"GET /api/networks",
		"GET /api/chart/:metric",
		"GET /api/alerts",
		"POST /api/rescan",
		"GET /api/rescan/status",
		"GET /ws",
		"GET /metrics",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	telemetry.InitMetrics()
	telemetry.ProbeCycles.Inc()

	r := gin.New()
	RegisterStreamRoutes(r, &controllers.Handlers{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wifiprober_probe_cycles_total")
}
