package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"wifiprober/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers carries the services behind the HTTP query surface.
type Handlers struct {
	Analytics *services.Analytics
	Live      *services.LiveSampler
	History   *services.LiveHistory
	Rescanner *services.Rescanner
	Alerts    *services.AlertLog
	Hub       *services.WebSocketHub
	Interface string
	Version   string
}

const defaultHours = 24

var errInvalidHours = errors.New("hours must be a positive integer")

// hoursParam reads the window size. Zero, negative and non-integer values are
// rejected.
func hoursParam(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery("hours")
	if !ok {
		return defaultHours, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 0, errInvalidHours
	}
	return hours, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
