package controllers

import (
	"net/http"

	"wifiprober/internal/services"

	"github.com/gin-gonic/gin"
)

// GetSummary returns totals and window averages.
// Query params: hours (default: 24)
func (h *Handlers) GetSummary(c *gin.Context) {
	hours, err := hoursParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Analytics.Summary(hours))
}

// GetOutages returns the outage list and availability for the window.
func (h *Handlers) GetOutages(c *gin.Context) {
	hours, err := hoursParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Analytics.Outages(hours))
}

// GetNetworks returns the network inventory for the window.
func (h *Handlers) GetNetworks(c *gin.Context) {
	hours, err := hoursParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	networks := h.Analytics.Inventory(hours)
	c.JSON(http.StatusOK, gin.H{
		"hours":    hours,
		"count":    len(networks),
		"networks": networks,
	})
}

// GetChart returns a time series for one metric.
// Path params: metric=speed|networks|ping
func (h *Handlers) GetChart(c *gin.Context) {
	metric := c.Param("metric")
	if !services.ValidChartMetric(metric) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metric"})
		return
	}
	hours, err := hoursParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Analytics.Chart(metric, hours))
}
