package health

import (
	"encoding/json"
	"time"
)

// ProbeResult is the outcome of one probe run. It is never modified after the
// probe returns it.
type ProbeResult struct {
	Name    string
	Status  Status
	Elapsed time.Duration
	Message string
	// Error holds the failure detail as text, so results stay comparable and serializable.
	Error string
	// Data carries probe-specific detail such as per-feed results.
	Data any
}

// Healthy builds a healthy result.
func Healthy(message string, data any) ProbeResult {
	return ProbeResult{Status: StatusHealthy, Message: message, Data: data}
}

// Unhealthy builds an unhealthy result from err.
func Unhealthy(message string, err error, data any) ProbeResult {
	r := ProbeResult{Status: StatusUnhealthy, Message: message, Data: data}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// MarshalJSON renders Elapsed in milliseconds.
func (r ProbeResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string `json:"name"`
		Status    Status `json:"status"`
		ElapsedMS int64  `json:"elapsed_ms"`
		Message   string `json:"message,omitempty"`
		Error     string `json:"error,omitempty"`
		Data      any    `json:"data,omitempty"`
	}{
		Name:      r.Name,
		Status:    r.Status,
		ElapsedMS: r.Elapsed.Milliseconds(),
		Message:   r.Message,
		Error:     r.Error,
		Data:      r.Data,
	})
}
