// Package types defines the records and event payloads that flow through the outreach pipeline.
package types

import "time"

// JobStatus is the lifecycle state of a job search request
type JobStatus string

// Job lifecycle states. RECEIVED is written by upstream intake.
const (
	JobStatusReceived   JobStatus = "RECEIVED"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusError      JobStatus = "ERROR"
)

// DefaultLocation is used whenever a query does not state a location
const DefaultLocation = "remote"

// DefaultQueryLimit is the result limit applied when the intake event omits one
const DefaultQueryLimit = 10

var statusRank = map[JobStatus]int{
	JobStatusReceived:   0,
	JobStatusProcessing: 1,
	JobStatusCompleted:  2,
}

// IsTerminal reports whether no further transitions are allowed from s
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// CanTransition reports whether a job in status s may move to next.
// Status only moves forward; ERROR is reachable from any non-terminal state.
// Re-entering the current status is allowed so redelivered events stay harmless.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	if next == JobStatusError {
		return true
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Job is one persisted search request
type Job struct {
	ID           string     `json:"id"`
	Query        string     `json:"query"`
	Role         string     `json:"parsed_role,omitempty"`
	Location     string     `json:"parsed_location,omitempty"`
	Limit        int        `json:"limit"`
	GoogleDorks  []string   `json:"google_dorks,omitempty"`
	Status       JobStatus  `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// JobPatch is a partial update of a Job. Nil fields are left untouched.
type JobPatch struct {
	Status       *JobStatus
	Role         *string
	Location     *string
	GoogleDorks  []string
	ErrorMessage *string
	UpdatedAt    *time.Time
	CompletedAt  *time.Time
}

// IsEmpty reports whether the patch would not change any column
func (p JobPatch) IsEmpty() bool {
	return p.Status == nil && p.Role == nil && p.Location == nil && p.GoogleDorks == nil &&
		p.ErrorMessage == nil && p.UpdatedAt == nil && p.CompletedAt == nil
}

// JobQuery is the structured form of a free-text search request.
// It is folded into the Job record and carried by job.query.processed.
type JobQuery struct {
	JobID       string   `json:"jobId"`
	Query       string   `json:"query"`
	Role        string   `json:"role"`
	Location    string   `json:"location"`
	Limit       int      `json:"limit"`
	GoogleDorks []string `json:"google_dorks"`
}
