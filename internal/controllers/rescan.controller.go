package controllers

import (
	"errors"
	"net/http"

	"wifiprober/internal/services"

	"github.com/gin-gonic/gin"
)

// PostRescan starts an out-of-band rescan. A request made while one is
// running is answered with 409 and is not queued.
func (h *Handlers) PostRescan(c *gin.Context) {
	if _, err := h.Rescanner.TryStart(c.Request.Context()); err != nil {
		if errors.Is(err, services.ErrRescanBusy) {
			c.JSON(http.StatusConflict, gin.H{
				"status": services.RescanInProgress,
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": services.RescanInProgress})
}

// GetRescanStatus reports whether a rescan is running.
func (h *Handlers) GetRescanStatus(c *gin.Context) {
	resp := gin.H{"status": h.Rescanner.Status()}
	if last := h.Rescanner.LastError(); last != "" {
		resp["last_error"] = last
	}
	c.JSON(http.StatusOK, resp)
}
