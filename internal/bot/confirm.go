package bot

import (
	"context"
	"sync"
	"time"
)

// choice is the outcome of one confirmation prompt.
type choice int

const (
	choiceTimeout choice = iota
	choiceConfirm
	choiceCancel
)

// pendingPrompt is one open confirmation. The first press sets resolved and
// buffers its choice; the entry itself stays until remove so a press landing
// before await starts listening is still delivered.
type pendingPrompt struct {
	ch       chan choice
	resolved bool
}

// confirmations routes button presses to the orchestrator goroutine waiting
// on the prompt. One pending entry per operation id; the first press wins.
type confirmations struct {
	mu      sync.Mutex
	pending map[string]*pendingPrompt
}

func newConfirmations() *confirmations {
	return &confirmations{pending: make(map[string]*pendingPrompt)}
}

// add opens a pending prompt for opID. Must happen before the prompt's
// buttons go live.
func (c *confirmations) add(opID string) {
	c.mu.Lock()
	c.pending[opID] = &pendingPrompt{ch: make(chan choice, 1)}
	c.mu.Unlock()
}

// remove discards the pending prompt for opID.
func (c *confirmations) remove(opID string) {
	c.mu.Lock()
	delete(c.pending, opID)
	c.mu.Unlock()
}

// resolve delivers a button press. Reports false when no prompt is open or a
// press already won.
func (c *confirmations) resolve(opID string, ch choice) bool {
	c.mu.Lock()
	p, ok := c.pending[opID]
	if !ok || p.resolved {
		c.mu.Unlock()
		return false
	}
	p.resolved = true
	c.mu.Unlock()
	p.ch <- ch
	return true
}

// await blocks until a choice arrives on the prompt opened with add, the
// window elapses, or ctx ends. The pending entry is discarded on return. A
// press that landed between add and await is delivered immediately.
func (c *confirmations) await(ctx context.Context, opID string, window time.Duration) choice {
	c.mu.Lock()
	p, ok := c.pending[opID]
	c.mu.Unlock()
	if !ok {
		return choiceTimeout
	}
	defer c.remove(opID)

	t := time.NewTimer(window)
	defer t.Stop()

	select {
	case got := <-p.ch:
		return got
	case <-t.C:
		return choiceTimeout
	case <-ctx.Done():
		return choiceTimeout
	}
}
