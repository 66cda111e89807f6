package purge

import (
	"sync"
	"time"
)

// Phase is the lifecycle stage of an operation.
type Phase string

const (
	PhaseSearching            Phase = "searching"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseDeleting             Phase = "deleting"
)

// Operation tracks one in-flight purge request. Its presence in the Registry
// is the sole liveness signal: every long-running loop checks Exists at its
// checkpoints, and removing the id is how cancellation happens.
type Operation struct {
	ID        string
	ChannelID string
	UserID    string
	Phase     Phase
	StartTime time.Time

	// Display-only capture of the request.
	SearchText string
	AuthorID   string
	MaxAgeText string

	MatchCount int
}

// Registry is the process-wide map of live operations. All mutation goes
// through the mutex; ids are never reused.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]*Operation
}

// NewRegistry returns an empty registry. One instance is created at process
// start and shared by every component that needs liveness checks.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Operation)}
}

// Register adds an operation. Registering an id that is already present
// overwrites it; callers generate unique ids so this does not happen in
// practice.
func (r *Registry) Register(op *Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.ID] = op
}

// Get returns the operation for id, or nil if it is no longer live.
func (r *Registry) Get(id string) *Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ops[id]
}

// Exists reports whether id is still live. This is the checkpoint primitive.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ops[id]
	return ok
}

// Remove drops an operation. Removal is terminal for that id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ops, id)
}

// SetPhase updates the phase of a live operation. A no-op if the operation
// was removed in the meantime.
func (r *Registry) SetPhase(id string, phase Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op, ok := r.ops[id]; ok {
		op.Phase = phase
	}
}

// SetMatchCount records the scan result size on a live operation.
func (r *Registry) SetMatchCount(id string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op, ok := r.ops[id]; ok {
		op.MatchCount = n
	}
}

// RemoveByChannel cancels every operation registered for channelID and
// returns how many were removed. Cancellation is channel-scoped: it is not
// limited to operations started by the aborting user.
func (r *Registry) RemoveByChannel(channelID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, op := range r.ops {
		if op.ChannelID == channelID {
			delete(r.ops, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live operations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}
