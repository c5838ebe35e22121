package itempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemPool_Recycle(t *testing.T) {
	p := New[int]()

	first := p.Insert()
	require.Equal(t, 0, first)

	second := p.Insert()
	require.Equal(t, 1, second)

	p.Erase(first)

	third := p.Insert()
	require.Equal(t, 0, third)

	var order []int
	p.Each(func(idx int, _ int) bool {
		order = append(order, idx)
		return true
	})
	assert.Equal(t, []int{1, 0}, order)
}

func TestItemPool_InsertValueRoundTrip(t *testing.T) {
	p := New[string]()

	idx := p.InsertValue("hello")
	assert.Equal(t, "hello", p.Get(idx))

	*p.At(idx) = "world"
	assert.Equal(t, "world", p.Get(idx))
}

func TestItemPool_EraseThenInsertValueOverwritesStaleData(t *testing.T) {
	p := New[int]()

	a := p.InsertValue(42)
	p.Erase(a)

	b := p.InsertValue(7)
	require.Equal(t, a, b)
	assert.Equal(t, 7, p.Get(b))
}

func TestItemPool_ContainsAndSize(t *testing.T) {
	p := New[int]()
	assert.True(t, p.Empty())

	a := p.Insert()
	assert.True(t, p.Contains(a))
	assert.Equal(t, 1, p.Size())

	p.Erase(a)
	assert.False(t, p.Contains(a))
	assert.True(t, p.Empty())
	assert.Equal(t, 1, p.Capacity())
}

func TestItemPool_Reserve(t *testing.T) {
	p := New[int]()
	p.Reserve(5)

	assert.Equal(t, 0, p.Size())
	assert.GreaterOrEqual(t, p.Capacity(), 5)

	idx := p.Insert()
	assert.Equal(t, 1, p.Size())
	assert.True(t, p.Contains(idx))
}

func TestItemPool_Clear(t *testing.T) {
	p := New[int]()
	p.Insert()
	p.Insert()
	p.Insert()

	p.Clear()
	assert.True(t, p.Empty())
	assert.Equal(t, 3, p.Capacity())

	idx := p.Insert()
	assert.Equal(t, 0, idx)
}

func TestItemPool_EachStopsEarly(t *testing.T) {
	p := New[int]()
	p.Insert()
	p.Insert()
	p.Insert()

	count := 0
	p.Each(func(idx int, value int) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}
