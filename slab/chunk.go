package slab

import (
	"fmt"
	"unsafe"

	"github.com/xaedes/chunky-mem/indexset"
)

// Chunk is one aligned raw-memory block sliced into slotCount fixed-size
// slots. Storage is pointer-stable for the chunk's lifetime: a Chunk is
// never relocated or resized after construction.
//
// A Chunk never calls constructors or destructors on its slots; it only
// tracks which slots are live. The owning Pool (or higher layer) is
// responsible for running any destructor before a slot is released.
type Chunk struct {
	raw        []byte // backing allocation; keeps storage reachable
	storage    unsafe.Pointer
	slotStride uintptr
	slotCount  int
	free       *indexset.Set
	occupied   *indexset.Set
}

// newChunk allocates a chunk of slotCount slots, each elementSize bytes
// rounded up to alignment, with storage aligned to alignment.
func newChunk(elementSize, alignment uintptr, slotCount int) (*Chunk, error) {
	if !isPowerOfTwo(alignment) {
		return nil, fmt.Errorf("slab: alignment %d is not a power of two", alignment)
	}
	if slotCount <= 0 {
		return nil, fmt.Errorf("slab: slotCount must be positive, got %d", slotCount)
	}

	stride := SlotStride(elementSize, alignment)
	total := int(stride) * slotCount

	storage, raw := alignedAlloc(total, alignment)
	if storage == nil {
		return nil, fmt.Errorf("slab: failed to allocate %d bytes", total)
	}

	return &Chunk{
		raw:        raw,
		storage:    storage,
		slotStride: stride,
		slotCount:  slotCount,
		free:       indexset.NewFull(slotCount),
		occupied:   indexset.New(slotCount),
	}, nil
}

// Allocate reserves the first free slot and returns its index. ok is
// false if the chunk is full.
func (c *Chunk) Allocate() (slotIndex int, ok bool) {
	i, ok := c.free.PopFront()
	if !ok {
		return 0, false
	}
	c.occupied.PushBack(i)
	return i, true
}

// Deallocate releases slotIndex back to the free set. It returns false,
// with no state change, if slotIndex is not currently occupied.
func (c *Chunk) Deallocate(slotIndex int) bool {
	if !c.occupied.Contains(slotIndex) {
		return false
	}
	c.occupied.Remove(slotIndex)
	c.free.PushBack(slotIndex)
	return true
}

// At returns the address of slotIndex, regardless of whether it is
// currently occupied. Precondition: 0 <= slotIndex < ChunkSize().
func (c *Chunk) At(slotIndex int) unsafe.Pointer {
	return unsafe.Pointer(uintptr(c.storage) + uintptr(slotIndex)*c.slotStride)
}

// IsAllocated reports whether slotIndex currently holds a live value.
func (c *Chunk) IsAllocated(slotIndex int) bool {
	return c.occupied.Contains(slotIndex)
}

// ChunkSize returns the number of slots in the chunk.
func (c *Chunk) ChunkSize() int { return c.slotCount }

// offsetOf returns the slot index ptr falls in and whether ptr lies
// exactly on a slot boundary within this chunk's storage range.
func (c *Chunk) offsetOf(ptr unsafe.Pointer) (slotIndex int, aligned bool) {
	start := uintptr(c.storage)
	end := start + uintptr(c.slotCount)*c.slotStride
	addr := uintptr(ptr)
	if addr < start || addr >= end {
		return 0, false
	}
	off := addr - start
	if off%c.slotStride != 0 {
		return 0, false
	}
	return int(off / c.slotStride), true
}

// Contains reports whether ptr addresses a live (occupied) slot in this
// chunk.
func (c *Chunk) Contains(ptr unsafe.Pointer) bool {
	slotIndex, aligned := c.offsetOf(ptr)
	return aligned && c.occupied.Contains(slotIndex)
}

// Find returns the slot index ptr addresses, if it is a live slot in
// this chunk.
func (c *Chunk) Find(ptr unsafe.Pointer) (slotIndex int, ok bool) {
	idx, aligned := c.offsetOf(ptr)
	if !aligned || !c.occupied.Contains(idx) {
		return 0, false
	}
	return idx, true
}

// full reports whether the chunk has no free slots.
func (c *Chunk) full() bool { return c.free.Empty() }

// OccupiedSlots exposes the chunk's live-slot index set, for callers that
// need to walk every live slot (such as dynamicpool's teardown).
func (c *Chunk) OccupiedSlots() *indexset.Set { return c.occupied }
