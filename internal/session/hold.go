package session

import "sync"

// Hold is a counted keep-alive guard. The orchestrator acquires a hold
// before requesting the startup windows, which are created asynchronously,
// and releases it once the whole batch has been requested. The run loop only
// exits when no holds are outstanding and no windows remain.
type Hold struct {
	mu    sync.Mutex
	count int
}

// Acquire takes one reference.
func (h *Hold) Acquire() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
}

// Release drops one reference. Releasing an unheld guard is a programming
// error and panics.
func (h *Hold) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		panic("session: release of unheld startup hold")
	}
	h.count--
}

// Held reports whether any reference is outstanding.
func (h *Hold) Held() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count > 0
}
