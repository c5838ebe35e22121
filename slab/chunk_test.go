package slab

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_AllocateDeallocate(t *testing.T) {
	c, err := newChunk(8, 16, 4)
	require.NoError(t, err)

	si, ok := c.Allocate()
	require.True(t, ok)
	assert.Equal(t, 0, si)
	assert.True(t, c.IsAllocated(si))

	ptr := c.At(si)
	assert.True(t, uintptr(ptr)%16 == 0, "slot address must be aligned")
	assert.True(t, c.Contains(ptr))

	assert.True(t, c.Deallocate(si))
	assert.False(t, c.IsAllocated(si))
	assert.False(t, c.Contains(ptr))
}

func TestChunk_FullWhenExhausted(t *testing.T) {
	c, err := newChunk(8, 16, 2)
	require.NoError(t, err)

	_, ok := c.Allocate()
	require.True(t, ok)
	assert.False(t, c.full())

	_, ok = c.Allocate()
	require.True(t, ok)
	assert.True(t, c.full())

	_, ok = c.Allocate()
	assert.False(t, ok)
}

func TestChunk_DeallocateIdempotent(t *testing.T) {
	c, err := newChunk(8, 16, 2)
	require.NoError(t, err)

	si, _ := c.Allocate()
	assert.True(t, c.Deallocate(si))
	assert.False(t, c.Deallocate(si))
}

func TestChunk_FindRejectsMisalignedAndOutOfRange(t *testing.T) {
	c, err := newChunk(8, 16, 2)
	require.NoError(t, err)

	si, _ := c.Allocate()
	base := c.At(si)

	misaligned := unsafe.Pointer(uintptr(base) + 1)
	_, ok := c.Find(misaligned)
	assert.False(t, ok)

	outside := unsafe.Pointer(uintptr(base) + 1<<20)
	_, ok = c.Find(outside)
	assert.False(t, ok)
}

func TestChunk_InvalidConstruction(t *testing.T) {
	_, err := newChunk(8, 3, 2)
	assert.Error(t, err, "alignment must be a power of two")

	_, err = newChunk(8, 16, 0)
	assert.Error(t, err, "slot count must be positive")
}
