package domain

import "time"

// JobStatus values mirror the task states reported by the synthesis API.
// TIMED_OUT is synthesized locally when the wall-clock budget runs out.
type JobStatus string

const (
	JobSubmitted JobStatus = "SUBMITTED"
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
	JobTimedOut  JobStatus = "TIMED_OUT"
)

// Terminal reports whether a status is absorbing.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobTimedOut
}

// RemoteJob tracks one asynchronous generation task. It only lives for the
// duration of a request and is never persisted.
type RemoteJob struct {
	ID            string
	Status        JobStatus
	CreatedAt     time.Time
	LastPolledAt  time.Time
	ResultURL     string
	FailureReason string
}
