package store

import (
	"sync"

	"dd-go/internal/transport"
)

// OpResult is the outcome of the most recent finished call of one operation.
type OpResult struct {
	ID   uint64
	Name string
	Err  error
}

// opTracker gives every in-flight operation its own identity so that two
// concurrent calls on one store do not clobber each other's loading signal.
// The shared error string keeps last-failure-wins semantics for display.
type opTracker struct {
	mu       sync.Mutex
	seq      uint64
	inFlight map[uint64]string
	last     map[string]OpResult
	errMsg   string
}

func newOpTracker() *opTracker {
	return &opTracker{
		inFlight: make(map[uint64]string),
		last:     make(map[string]OpResult),
	}
}

// begin registers a new operation and clears the shared error. The returned
// func must be called exactly once with the operation's outcome. fallback is
// the message recorded when err carries none.
func (t *opTracker) begin(name string) func(err error, fallback string) {
	t.mu.Lock()
	t.seq++
	id := t.seq
	t.inFlight[id] = name
	t.errMsg = ""
	t.mu.Unlock()

	return func(err error, fallback string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.inFlight, id)
		t.last[name] = OpResult{ID: id, Name: name, Err: err}
		if err != nil {
			t.errMsg = transport.MessageOf(err, fallback)
		}
	}
}

// fail records a local precondition failure; no operation is started.
func (t *opTracker) fail(msg string) {
	t.mu.Lock()
	t.errMsg = msg
	t.mu.Unlock()
}

func (t *opTracker) clearError() {
	t.mu.Lock()
	t.errMsg = ""
	t.mu.Unlock()
}

func (t *opTracker) errorMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// loading is true while any operation is in flight.
func (t *opTracker) loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inFlight) > 0
}

func (t *opTracker) lastOp(name string) (OpResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.last[name]
	return r, ok
}
