package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHoldCountsReferences(t *testing.T) {
	h := &Hold{}
	assert.False(t, h.Held())

	h.Acquire()
	h.Acquire()
	assert.True(t, h.Held())

	h.Release()
	assert.True(t, h.Held())

	h.Release()
	assert.False(t, h.Held())
}

func TestReleaseWithoutAcquirePanics(t *testing.T) {
	h := &Hold{}
	assert.Panics(t, func() { h.Release() })
}
