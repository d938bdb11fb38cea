package services

import "math"

var debugLogging bool

// SetDebug toggles verbose stage logging for every service in the package.
func SetDebug(enabled bool) {
	debugLogging = enabled
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
