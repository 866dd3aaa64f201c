package app

import (
	"time"

	"dd-go/internal/dd"
)

// Invocation tracks one CLI command run. Its ID tags every log line the
// command writes.
type Invocation struct {
	ID      string
	Command string
	Started time.Time
	Status  string // "success" or "error"
	Err     error
}

// NewInvocation starts tracking command.
func NewInvocation(command string, ids dd.IDGenerator, clock dd.Clock) *Invocation {
	return &Invocation{
		ID:      ids.New(),
		Command: command,
		Started: clock.Now(),
		Status:  "success",
	}
}

// Fail marks the invocation as failed. A nil err is ignored.
func (i *Invocation) Fail(err error) {
	if err == nil {
		return
	}
	i.Status = "error"
	i.Err = err
}

// Failed reports whether Fail was called with an error.
func (i *Invocation) Failed() bool {
	return i.Status == "error"
}
