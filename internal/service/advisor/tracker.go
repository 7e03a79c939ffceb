package advisor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Action names a user-triggered pipeline operation for request tracking.
type Action string

const (
	ActionGeocode        Action = "geocode"
	ActionReverseGeocode Action = "reverse_geocode"
	ActionIdeas          Action = "ideas"
	ActionMatches        Action = "matches"
)

type requestKey struct {
	userID uuid.UUID
	action Action
}

type activeRequest struct {
	token  uint64
	cancel context.CancelFunc
}

// RequestTracker hands out monotonically increasing tokens per (user, action).
// Starting a request cancels the previous in-flight request for the same key.
type RequestTracker struct {
	mu     sync.Mutex
	next   uint64
	active map[requestKey]activeRequest
}

// NewRequestTracker creates an empty tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{active: make(map[requestKey]activeRequest)}
}

// Ticket identifies one tracked request.
type Ticket struct {
	tracker *RequestTracker
	key     requestKey
	token   uint64
	cancel  context.CancelFunc
}

// Begin registers a new request for userID and action and returns a context
// that is cancelled when a newer request for the same key begins or when the
// ticket is finished.
func (t *RequestTracker) Begin(ctx context.Context, userID uuid.UUID, action Action) (context.Context, *Ticket) {
	reqCtx, cancel := context.WithCancel(ctx)
	key := requestKey{userID: userID, action: action}

	t.mu.Lock()
	t.next++
	token := t.next
	prev, hadPrev := t.active[key]
	t.active[key] = activeRequest{token: token, cancel: cancel}
	t.mu.Unlock()

	if hadPrev {
		prev.cancel()
	}

	return reqCtx, &Ticket{tracker: t, key: key, token: token, cancel: cancel}
}

// Token returns the ticket's sequence number.
func (tk *Ticket) Token() uint64 {
	return tk.token
}

// Current reports whether no newer request for the same key has begun.
func (tk *Ticket) Current() bool {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	active, ok := tk.tracker.active[tk.key]
	return ok && active.token == tk.token
}

// Finish releases the ticket's context and forgets it if it is still the
// latest for its key. Safe to call more than once.
func (tk *Ticket) Finish() {
	tk.cancel()

	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	if active, ok := tk.tracker.active[tk.key]; ok && active.token == tk.token {
		delete(tk.tracker.active, tk.key)
	}
}

// InFlight returns the number of tracked requests that have not finished.
func (t *RequestTracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
