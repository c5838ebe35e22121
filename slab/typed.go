package slab

import "unsafe"

// TypedPool is a Pool specialized to one compile-time element type T. It
// adds Create/Destroy, which forward to Pool's raw-slot allocate/free and
// additionally run T's construction/destruction semantics at the slot
// address.
//
// chunkSlotCount and alignment are ordinary constructor arguments rather
// than compile-time constants, since Go generics have no non-type type
// parameters.
type TypedPool[T any] struct {
	pool *Pool
}

// NewTypedPool constructs a TypedPool holding chunkSlotCount elements of
// T per chunk, aligned to alignment.
func NewTypedPool[T any](chunkSlotCount int, alignment uintptr) (*TypedPool[T], error) {
	var zero T
	pool, err := NewPool(unsafe.Sizeof(zero), alignment, chunkSlotCount)
	if err != nil {
		return nil, err
	}
	return &TypedPool[T]{pool: pool}, nil
}

// Create allocates a slot and initializes it to value, returning a
// pointer into pool storage. ok is false if the pool failed to grow.
func (p *TypedPool[T]) Create(value T) (ptr *T, ok bool) {
	raw, ok := p.pool.AllocateRaw()
	if !ok {
		return nil, false
	}
	typed := (*T)(raw)
	*typed = value
	return typed, true
}

// New allocates a slot holding the zero value of T.
func (p *TypedPool[T]) New() (ptr *T, ok bool) {
	var zero T
	return p.Create(zero)
}

// Destroy runs T's zero-value reset at ptr and releases the slot. It
// returns false, with no state change, if ptr is not a live slot owned
// by this pool.
func (p *TypedPool[T]) Destroy(ptr *T) bool {
	if !p.pool.Contains(unsafe.Pointer(ptr)) {
		return false
	}
	var zero T
	*ptr = zero
	return p.pool.Deallocate(unsafe.Pointer(ptr))
}

// Contains reports whether ptr addresses a live slot owned by this pool.
func (p *TypedPool[T]) Contains(ptr *T) bool {
	return p.pool.Contains(unsafe.Pointer(ptr))
}

// Find locates the chunk/slot index pair addressed by ptr.
func (p *TypedPool[T]) Find(ptr *T) (chunkIndex, slotIndex int, ok bool) {
	return p.pool.Find(unsafe.Pointer(ptr))
}

// GetItem reconstructs the typed pointer for a chunk/slot index pair
// previously returned by Find.
func (p *TypedPool[T]) GetItem(chunkIndex, slotIndex int) *T {
	return (*T)(p.pool.At(chunkIndex, slotIndex))
}

// ChunkCount returns the number of chunks the underlying pool has
// allocated so far.
func (p *TypedPool[T]) ChunkCount() int { return p.pool.ChunkCount() }
