package routes

import (
	"wifiprober/internal/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAPIRoutes registers the query surface under /api.
func RegisterAPIRoutes(r *gin.Engine, h *controllers.Handlers) {
	api := r.Group("/api")
	{
		api.GET("/health", h.GetHealth)
		api.GET("/live", h.GetLive)
		api.GET("/live/history", h.GetLiveHistory)
		api.GET("/wifi_ip", h.GetWifiIP)
		api.GET("/summary", h.GetSummary)
		api.GET("/outages", h.GetOutages)
		api.GET("/networks", h.GetNetworks)
		api.GET("/chart/:metric", h.GetChart)
		api.GET("/alerts", h.GetAlerts)
		api.POST("/rescan", h.PostRescan)
		api.GET("/rescan/status", h.GetRescanStatus)
	}
}

// RegisterStreamRoutes registers the websocket feed and the Prometheus
// endpoint.
func RegisterStreamRoutes(r *gin.Engine, h *controllers.Handlers) {
	r.GET("/ws", h.HandleWebSocket)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
