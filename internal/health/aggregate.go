package health

import (
	"encoding/json"
	"fmt"
	"time"
)

// Report is the aggregate health of every probe in one run.
type Report struct {
	Status  Status
	Elapsed time.Duration
	Probes  map[string]ProbeResult
	Summary string
	Healthy int
	Total   int
	// CheckedAt is stamped by Set.Run; Aggregate leaves it zero.
	CheckedAt time.Time
}

// Aggregate combines per-probe results into a Report using the quorum rule.
// Only probes reporting StatusHealthy count toward the quorum. elapsed is the
// wall-clock time of the whole run, not a sum of probe times.
//
// Aggregate is pure: the same input yields the same report.
func Aggregate(results map[string]ProbeResult, elapsed time.Duration) Report {
	probes := make(map[string]ProbeResult, len(results))
	healthy := 0
	for name, r := range results {
		probes[name] = r
		if r.Status == StatusHealthy {
			healthy++
		}
	}

	total := len(results)
	return Report{
		Status:  Quorum(healthy, total),
		Elapsed: elapsed,
		Probes:  probes,
		Summary: fmt.Sprintf("%d/%d services healthy", healthy, total),
		Healthy: healthy,
		Total:   total,
	}
}

// MarshalJSON renders durations in milliseconds and the timestamp in RFC 3339.
func (r Report) MarshalJSON() ([]byte, error) {
	out := struct {
		Status    Status                 `json:"status"`
		Summary   string                 `json:"summary"`
		Healthy   int                    `json:"healthy"`
		Total     int                    `json:"total"`
		ElapsedMS int64                  `json:"elapsed_ms"`
		CheckedAt string                 `json:"checked_at,omitempty"`
		Probes    map[string]ProbeResult `json:"probes"`
	}{
		Status:    r.Status,
		Summary:   r.Summary,
		Healthy:   r.Healthy,
		Total:     r.Total,
		ElapsedMS: r.Elapsed.Milliseconds(),
		Probes:    r.Probes,
	}
	if !r.CheckedAt.IsZero() {
		out.CheckedAt = r.CheckedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}
