package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"wifiprober/internal/services"

	"github.com/gin-gonic/gin"
)

// GetLive returns the latest live metrics and the incident state.
func (h *Handlers) GetLive(c *gin.Context) {
	c.JSON(http.StatusOK, h.Live.Snapshot())
}

// GetLiveHistory returns recent live ticks kept in memory.
// Query params: minutes (default: 10)
func (h *Handlers) GetLiveHistory(c *gin.Context) {
	minutes, err := strconv.Atoi(c.DefaultQuery("minutes", "10"))
	if err != nil || minutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be a positive integer"})
		return
	}
	points := h.History.Since(time.Duration(minutes) * time.Minute)
	c.JSON(http.StatusOK, gin.H{
		"minutes": minutes,
		"data":    points,
	})
}

// GetWifiIP returns the current IPv4 address of the monitored interface.
func (h *Handlers) GetWifiIP(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var ip *string
	if addr := services.InterfaceIPv4(ctx, h.Interface); addr != "" {
		ip = &addr
	}
	c.JSON(http.StatusOK, gin.H{
		"interface": h.Interface,
		"wifi_ip":   ip,
	})
}
