package service

import "sync"

// StatusTracker remembers the most recent pass. Its Observe method is
// an Observer.
type StatusTracker struct {
	mu     sync.RWMutex
	last   PassResult
	passes int
}

func NewStatusTracker() *StatusTracker { return &StatusTracker{} }

func (t *StatusTracker) Observe(res PassResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = res
	t.passes++
}

// Last returns the latest pass and whether any pass has finished yet.
func (t *StatusTracker) Last() (PassResult, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.passes > 0
}

// Passes is the number of passes observed since startup.
func (t *StatusTracker) Passes() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.passes
}
