package job

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state a job transitions to when it leaves the queue
type Status string

const (
	StatusSuccessful Status = "successful"
	StatusException  Status = "exception"
	StatusCanceled   Status = "canceled"
)

// Valid reports whether s is one of the statuses the status log accepts
func (s Status) Valid() bool {
	switch s {
	case StatusSuccessful, StatusException, StatusCanceled:
		return true
	}
	return false
}

// Job is a queued unit of work. The buffer treats it as an opaque payload;
// only the status log cares about its fields.
type Job struct {
	ID         string
	Entrypoint string
	Payload    []byte
	Priority   int
	CreatedAt  time.Time
}

// New creates a job with a generated ID
func New(entrypoint string, payload []byte, priority int) (*Job, error) {
	if entrypoint == "" {
		return nil, fmt.Errorf("job entrypoint must not be empty")
	}

	return &Job{
		ID:         uuid.New().String(),
		Entrypoint: entrypoint,
		Payload:    payload,
		Priority:   priority,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
