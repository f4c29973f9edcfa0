package model

import "time"

// RunReport summarizes one automatic pass.
type RunReport struct {
	ID          string
	Mode        RunMode
	State       RunState
	Fetched     int
	Pending     int
	Succeeded   int
	AuthExpired int
	Failed      int
	StartedAt   time.Time
	FinishedAt  time.Time
	Error       string
}

// Duration returns how long the pass ran. Zero until the pass has finished.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
