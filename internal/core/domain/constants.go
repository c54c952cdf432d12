package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownStyle        = errors.New("unknown sketch style")
	ErrEmptyImage          = errors.New("empty source image")
	ErrMissingAPIKey       = errors.New("api key not configured")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// RemoteJobFailedError carries the failure reason reported by the remote
// status payload.
type RemoteJobFailedError struct {
	Reason string
}

func (e *RemoteJobFailedError) Error() string {
	return fmt.Sprintf("remote job failed: %s", e.Reason)
}

// RemoteJobTimeoutError is produced when a job's wall-clock budget is
// exhausted before a terminal state was observed.
type RemoteJobTimeoutError struct {
	JobID   string
	Elapsed time.Duration
}

func (e *RemoteJobTimeoutError) Error() string {
	return fmt.Sprintf("remote job %s timed out after %s", e.JobID, e.Elapsed)
}

// DecodeError wraps a failure to decode a fetched result payload.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding result image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
