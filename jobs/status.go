package jobs

import (
	"time"
)

// Status is the lifecycle state of a job.
type Status string

// Job statuses.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var transitions = map[Status][]Status{
	StatusQueued:  {StatusRunning},
	StatusRunning: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether a job may move from s to to.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is what the status store keeps per job.
type Record struct {
	TaskID    string    `json:"task_id"`
	Kind      Kind      `json:"kind"`
	Status    Status    `json:"status"`
	Result    *Envelope `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
