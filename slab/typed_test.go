package slab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int32
}

func TestTypedPool_CreateDestroy(t *testing.T) {
	pool, err := NewTypedPool[point](4, 16)
	require.NoError(t, err)

	p, ok := pool.Create(point{X: 1, Y: 2})
	require.True(t, ok)
	assert.Equal(t, int32(1), p.X)
	assert.Equal(t, int32(2), p.Y)

	assert.True(t, pool.Destroy(p))
	assert.False(t, pool.Contains(p))
}

func TestTypedPool_New(t *testing.T) {
	pool, err := NewTypedPool[point](4, 16)
	require.NoError(t, err)

	p, ok := pool.New()
	require.True(t, ok)
	assert.Equal(t, point{}, *p)
}

func TestTypedPool_RoundTrip(t *testing.T) {
	pool, err := NewTypedPool[point](4, 16)
	require.NoError(t, err)

	p, _ := pool.Create(point{X: 7, Y: 9})
	ci, si, ok := pool.Find(p)
	require.True(t, ok)
	assert.Same(t, p, pool.GetItem(ci, si))
}

func TestTypedPool_DestroyIdempotent(t *testing.T) {
	pool, err := NewTypedPool[point](4, 16)
	require.NoError(t, err)

	p, _ := pool.Create(point{})
	assert.True(t, pool.Destroy(p))
	assert.False(t, pool.Destroy(p))
}
