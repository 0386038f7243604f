// Package health runs independent probes against the system's dependencies and
// reduces their results into one three-valued status.
package health

import "net/http"

// Status is the health of a single probe or of the whole system.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// HTTPCode maps a status to the response code served by health endpoints.
// Degraded still serves 200 so load balancers keep routing traffic.
func (s Status) HTTPCode() int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Score is the numeric form exported as a gauge.
func (s Status) Score() float64 {
	switch s {
	case StatusHealthy:
		return 1
	case StatusDegraded:
		return 0.5
	default:
		return 0
	}
}

// Quorum classifies healthy out of total outcomes: none is unhealthy, all is
// healthy, anything in between is degraded. An empty set is unhealthy.
func Quorum(healthy, total int) Status {
	switch {
	case healthy <= 0 || total <= 0:
		return StatusUnhealthy
	case healthy >= total:
		return StatusHealthy
	default:
		return StatusDegraded
	}
}
