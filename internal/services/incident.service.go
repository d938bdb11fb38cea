package services

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"wifiprober/internal/models"
	"wifiprober/internal/telemetry"

	"github.com/google/uuid"
)

// Incident classification
const (
	IncidentTypePingFailure = "ping_failure"
	SeverityCritical        = "critical"
	SeverityWarning         = "warning"
)

// Transition is the edge produced by one observation.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionActivated
	TransitionCleared
)

func (t Transition) String() string {
	switch t {
	case TransitionActivated:
		return "active"
	case TransitionCleared:
		return "clear"
	default:
		return "none"
	}
}

// TargetOutcome is one target's live ping result.
type TargetOutcome struct {
	Target  Target
	Outcome models.PingOutcome
}

// IncidentTracker is the Clear/Active state machine. Observe is called only
// by the live loop; Current may be called from any goroutine. The state is
// swapped as a whole value and never edited in place.
type IncidentTracker struct {
	current atomic.Pointer[models.Incident]
	newID   func() string
}

func NewIncidentTracker() *IncidentTracker {
	t := &IncidentTracker{newID: uuid.NewString}
	t.current.Store(&models.Incident{})
	return t
}

// Current returns a copy of the incident state.
func (t *IncidentTracker) Current() models.Incident {
	return *t.current.Load()
}

// Observe feeds one tick's results. A tick with any failing target opens an
// incident when none is active; a tick where every target answers closes it.
// Repeated failures while active do not produce a new record.
func (t *IncidentTracker) Observe(at time.Time, results []TargetOutcome) Transition {
	var failed []string
	for _, r := range results {
		if !r.Outcome.Success {
			failed = append(failed, r.Target.Name)
		}
	}
	active := t.current.Load().Active

	switch {
	case len(failed) > 0 && !active:
		severity := SeverityWarning
		if len(failed) == len(results) {
			severity = SeverityCritical
		}
		since := at
		t.current.Store(&models.Incident{
			ID:       t.newID(),
			Active:   true,
			Type:     IncidentTypePingFailure,
			Severity: severity,
			Since:    &since,
			Message:  fmt.Sprintf("ping failed: %s", strings.Join(failed, ", ")),
		})
		telemetry.IncidentActive.Set(1)
		telemetry.IncidentTransitions.WithLabelValues(TransitionActivated.String()).Inc()
		log.Printf("[INCIDENT] Active (%s): ping failed for %s", severity, strings.Join(failed, ", "))
		return TransitionActivated

	case len(failed) == 0 && active:
		t.current.Store(&models.Incident{})
		telemetry.IncidentActive.Set(0)
		telemetry.IncidentTransitions.WithLabelValues(TransitionCleared.String()).Inc()
		log.Printf("[INCIDENT] Cleared, all targets reachable")
		return TransitionCleared
	}
	return TransitionNone
}
