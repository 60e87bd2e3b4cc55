package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrebrowser/vitre/internal/domain/entity"
)

func newTestContexts(t *testing.T) *ContextManager {
	t.Helper()
	m, err := NewContextManager(context.Background(), &fakeEngine{}, t.TempDir(), t.TempDir())
	require.NoError(t, err)
	return m
}

func TestSelectReturnsIsolatedContexts(t *testing.T) {
	m := newTestContexts(t)

	normal := m.Select(entity.PrivacyNormal)
	private := m.Select(entity.PrivacyPrivate)

	assert.False(t, normal.Context().IsEphemeral())
	assert.True(t, private.Context().IsEphemeral())
	assert.NotSame(t, normal.Context(), private.Context())
}

func TestContextsAreSharedWithinAPrivacyClass(t *testing.T) {
	m := newTestContexts(t)

	a := m.Select(entity.PrivacyNormal)
	b := m.Select(entity.PrivacyNormal)

	// One long-lived context per class, cloned into every window.
	assert.Same(t, a.Context(), b.Context())
	assert.Equal(t, 2, m.Refs(entity.PrivacyNormal))
}

func TestReleaseIsCountedAndIdempotent(t *testing.T) {
	m := newTestContexts(t)

	a := m.Select(entity.PrivacyPrivate)
	b := m.Select(entity.PrivacyPrivate)
	require.Equal(t, 2, m.Refs(entity.PrivacyPrivate))

	a.Release()
	a.Release() // double release of one handle must not steal b's reference
	assert.Equal(t, 1, m.Refs(entity.PrivacyPrivate))

	b.Release()
	assert.Equal(t, 0, m.Refs(entity.PrivacyPrivate))
}
