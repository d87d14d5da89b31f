package models

import "time"

// RunAcceptedResponse is returned when a run has been started.
type RunAcceptedResponse struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// RunStatsResponse wraps persisted run statistics.
type RunStatsResponse struct {
	Success bool      `json:"success"`
	Stats   *RunStats `json:"stats,omitempty"`
}

// ErrorResponse is the standard error payload for API failures.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
