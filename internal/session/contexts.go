package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitrebrowser/vitre/internal/application/port"
	"github.com/vitrebrowser/vitre/internal/domain/entity"
)

// ContextManager owns the two long-lived browsing contexts. Both are
// constructed once at session startup and never recreated; handles are
// reference-counted so a context is never torn down while any window of its
// privacy class exists.
type ContextManager struct {
	normal  port.RendererContext
	private port.RendererContext

	mu   sync.Mutex
	refs map[entity.Privacy]int
}

// NewContextManager builds the Normal (persistent) and Private (ephemeral)
// contexts from the engine.
func NewContextManager(ctx context.Context, engine port.WebEngine, dataDir, cacheDir string) (*ContextManager, error) {
	normal, err := engine.NewContext(ctx, port.ContextOptions{
		DataDir:  dataDir,
		CacheDir: cacheDir,
	})
	if err != nil {
		return nil, fmt.Errorf("create normal browsing context: %w", err)
	}

	private, err := engine.NewContext(ctx, port.ContextOptions{Ephemeral: true})
	if err != nil {
		_ = normal.Close()
		return nil, fmt.Errorf("create private browsing context: %w", err)
	}

	return &ContextManager{
		normal:  normal,
		private: private,
		refs:    make(map[entity.Privacy]int),
	}, nil
}

// Select returns a handle on the context matching the privacy class.
func (m *ContextManager) Select(privacy entity.Privacy) *ContextHandle {
	m.mu.Lock()
	m.refs[privacy]++
	m.mu.Unlock()

	rctx := m.normal
	if privacy.IsPrivate() {
		rctx = m.private
	}
	return &ContextHandle{manager: m, privacy: privacy, rctx: rctx}
}

// Refs returns the number of outstanding handles for a privacy class.
func (m *ContextManager) Refs(privacy entity.Privacy) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs[privacy]
}

// Close tears down both contexts. Callers must ensure no handles remain.
func (m *ContextManager) Close() error {
	if err := m.normal.Close(); err != nil {
		return err
	}
	return m.private.Close()
}

func (m *ContextManager) release(privacy entity.Privacy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refs[privacy] > 0 {
		m.refs[privacy]--
	}
}

// ContextHandle is a counted reference to a browsing context, released on
// window teardown.
type ContextHandle struct {
	manager *ContextManager
	privacy entity.Privacy
	rctx    port.RendererContext

	once sync.Once
}

// Context returns the underlying renderer context.
func (h *ContextHandle) Context() port.RendererContext {
	return h.rctx
}

// Release drops the reference. Safe to call more than once.
func (h *ContextHandle) Release() {
	h.once.Do(func() {
		h.manager.release(h.privacy)
	})
}
