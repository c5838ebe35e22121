// Package itempool implements a dense-index value container: Insert
// returns a stable index into a growable slice, Erase recycles it, and
// live items can be iterated in insertion order. It is built directly on
// top of indexset, the same way the slab package's Chunk is.
package itempool

import "github.com/xaedes/chunky-mem/indexset"

// ItemPool is a generic dense-index container over T. Indices returned
// by Insert remain valid (and keep addressing the same value) until the
// matching Erase, at which point they may be recycled by a later Insert.
type ItemPool[T any] struct {
	slots    []T
	free     *indexset.Set
	occupied *indexset.Set
}

// New returns an empty ItemPool.
func New[T any]() *ItemPool[T] {
	return &ItemPool[T]{
		free:     indexset.New(0),
		occupied: indexset.New(0),
	}
}

// Insert allocates a slot holding the zero value of T and returns its
// index.
func (p *ItemPool[T]) Insert() int {
	idx := p.takeSlot()
	var zero T
	p.slots[idx] = zero
	p.occupied.PushBack(idx)
	return idx
}

// InsertValue allocates a slot holding value and returns its index.
func (p *ItemPool[T]) InsertValue(value T) int {
	idx, reused := p.takeSlotReused()
	if reused {
		p.slots[idx] = value
	}
	p.occupied.PushBack(idx)
	return idx
}

// takeSlot returns a recycled free index, or grows slots by one and
// returns the new index.
func (p *ItemPool[T]) takeSlot() int {
	idx, _ := p.takeSlotReused()
	return idx
}

// takeSlotReused is takeSlot, additionally reporting whether the
// returned index is a recycled slot (true) or a freshly grown one
// (false, already holding T's zero value from append).
func (p *ItemPool[T]) takeSlotReused() (idx int, reused bool) {
	if len(p.slots) > 0 {
		if idx, ok := p.free.PopFront(); ok {
			return idx, true
		}
	}
	var zero T
	p.slots = append(p.slots, zero)
	idx = len(p.slots) - 1
	p.free.Reserve(len(p.slots))
	p.occupied.Reserve(len(p.slots))
	return idx, false
}

// Get returns the value at idx. Precondition: idx was returned by Insert
// and has not since been Erase'd.
func (p *ItemPool[T]) Get(idx int) T { return p.slots[idx] }

// Set overwrites the value at idx. Precondition: idx was returned by
// Insert and has not since been Erase'd.
func (p *ItemPool[T]) Set(idx int, value T) { p.slots[idx] = value }

// At returns a pointer to the slot at idx, for in-place mutation.
// Precondition: idx was returned by Insert and has not since been
// Erase'd.
func (p *ItemPool[T]) At(idx int) *T { return &p.slots[idx] }

// Erase recycles idx. The slot's value is left in place (not
// zeroed) until the index is reused, when InsertValue overwrites it with
// the new value and Insert resets it to the zero value.
func (p *ItemPool[T]) Erase(idx int) {
	p.free.PushBack(idx)
	p.occupied.Remove(idx)
}

// Reserve grows the pool's backing storage to at least n slots without
// changing Size(), by repeatedly inserting and erasing until Capacity()
// reaches n. A direct grow primitive would be cheaper but is not
// implemented here.
func (p *ItemPool[T]) Reserve(n int) {
	var toErase []int
	for p.Capacity() < n {
		toErase = append(toErase, p.Insert())
	}
	for _, idx := range toErase {
		p.Erase(idx)
	}
}

// Clear empties the pool: every slot becomes free, in ascending index
// order, and Size() becomes 0. Capacity() is unchanged.
func (p *ItemPool[T]) Clear() {
	p.free.Clear()
	p.occupied.Clear()
	for i := 0; i < len(p.slots); i++ {
		p.free.PushBack(i)
	}
}

// Empty reports whether the pool holds no live items.
func (p *ItemPool[T]) Empty() bool { return p.Size() == 0 }

// Size returns the number of live items.
func (p *ItemPool[T]) Size() int { return p.occupied.Size() }

// Capacity returns the number of slots backing the pool, live or free.
func (p *ItemPool[T]) Capacity() int { return len(p.slots) }

// Contains reports whether idx currently addresses a live item.
func (p *ItemPool[T]) Contains(idx int) bool { return p.occupied.Contains(idx) }

// FreeSlots exposes the underlying free-index set for iteration.
func (p *ItemPool[T]) FreeSlots() *indexset.Set { return p.free }

// OccupiedSlots exposes the underlying occupied-index set for iteration,
// in insertion order.
func (p *ItemPool[T]) OccupiedSlots() *indexset.Set { return p.occupied }

// Each calls fn for every live item, in insertion order, stopping early
// if fn returns false.
func (p *ItemPool[T]) Each(fn func(idx int, value T) bool) {
	p.occupied.Each(func(idx int) bool {
		return fn(idx, p.slots[idx])
	})
}
