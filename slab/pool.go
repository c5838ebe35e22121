package slab

import (
	"fmt"
	"unsafe"

	"github.com/xaedes/chunky-mem/indexset"
)

// Pool is a growable, ordered collection of Chunks for one slot size. It
// routes slot allocation to the earliest chunk with a free slot, grows by
// appending a new chunk when none has room, and never shrinks on its own.
//
// Pool owns its Chunks exclusively: destroying a Pool releases all of
// them (dropping the last reference lets the Go garbage collector reclaim
// their backing storage; there is no separate destructor step since no
// slot's raw bytes carry a non-trivial Go destructor).
type Pool struct {
	chunks         []*Chunk
	partialChunks  *indexset.Set // chunk indices with >=1 free slot
	fullChunks     *indexset.Set // chunk indices with 0 free slots
	elementSize    uintptr
	alignment      uintptr
	chunkSlotCount int
}

// NewPool constructs a Pool whose chunks each hold chunkSlotCount slots
// of elementSize bytes, aligned to alignment.
func NewPool(elementSize, alignment uintptr, chunkSlotCount int) (*Pool, error) {
	if !isPowerOfTwo(alignment) {
		return nil, fmt.Errorf("slab: alignment %d is not a power of two", alignment)
	}
	if chunkSlotCount <= 0 {
		return nil, fmt.Errorf("slab: chunkSlotCount must be positive, got %d", chunkSlotCount)
	}
	return &Pool{
		partialChunks:  indexset.New(0),
		fullChunks:     indexset.New(0),
		elementSize:    elementSize,
		alignment:      alignment,
		chunkSlotCount: chunkSlotCount,
	}, nil
}

// Allocate reserves a raw slot and returns the chunk/slot index pair that
// identifies it. ok is false only if growing the pool (allocating a new
// chunk) failed.
func (p *Pool) Allocate() (chunkIndex, slotIndex int, ok bool) {
	if p.partialChunks.Empty() {
		ci, err := p.growChunk()
		if err != nil {
			return 0, 0, false
		}
		return p.allocateFromChunk(ci)
	}
	return p.allocateFromChunk(p.partialChunks.Front())
}

// allocateFromChunk allocates a slot from the chunk at ci, which must
// currently be partial (front of partialChunks or freshly grown).
func (p *Pool) allocateFromChunk(ci int) (chunkIndex, slotIndex int, ok bool) {
	chunk := p.chunks[ci]
	si, ok := chunk.Allocate()
	if !ok {
		// A chunk classified partial must have a free slot; this would
		// indicate classification corruption.
		panic("slab: partial chunk had no free slot")
	}

	if chunk.full() {
		p.partialChunks.Remove(ci)
		p.fullChunks.PushBack(ci)
	}

	return ci, si, true
}

// growChunk appends a new, empty chunk and marks it partial.
func (p *Pool) growChunk() (int, error) {
	chunk, err := newChunk(p.elementSize, p.alignment, p.chunkSlotCount)
	if err != nil {
		return 0, err
	}
	ci := len(p.chunks)
	p.chunks = append(p.chunks, chunk)
	p.partialChunks.Reserve(ci + 1)
	p.fullChunks.Reserve(ci + 1)
	p.partialChunks.PushBack(ci)
	return ci, nil
}

// Deallocate releases the slot addressed by ptr. It returns false, with
// no state change, if ptr does not address a currently-live slot owned
// by this pool.
func (p *Pool) Deallocate(ptr unsafe.Pointer) bool {
	ci, si, ok := p.Find(ptr)
	if !ok {
		return false
	}
	return p.deallocateAt(ci, si)
}

func (p *Pool) deallocateAt(chunkIndex, slotIndex int) bool {
	chunk := p.chunks[chunkIndex]
	wasFull := chunk.full()
	if !chunk.Deallocate(slotIndex) {
		return false
	}
	if wasFull {
		p.fullChunks.Remove(chunkIndex)
		// Inserted at the back so newly-freed chunks don't thrash
		// allocation locality: allocation keeps favoring the earliest
		// partial chunk.
		p.partialChunks.PushBack(chunkIndex)
	}
	return true
}

// Find locates the chunk/slot index pair addressed by ptr, if ptr
// addresses a live slot owned by this pool.
func (p *Pool) Find(ptr unsafe.Pointer) (chunkIndex, slotIndex int, ok bool) {
	for ci, chunk := range p.chunks {
		if si, ok := chunk.Find(ptr); ok {
			return ci, si, true
		}
	}
	return 0, 0, false
}

// Contains reports whether ptr addresses a live slot owned by this pool.
func (p *Pool) Contains(ptr unsafe.Pointer) bool {
	_, _, ok := p.Find(ptr)
	return ok
}

// At returns the address of the given chunk/slot index pair.
// Precondition: 0 <= chunkIndex < ChunkCount().
func (p *Pool) At(chunkIndex, slotIndex int) unsafe.Pointer {
	return p.chunks[chunkIndex].At(slotIndex)
}

// ChunkCount returns the number of chunks the pool has allocated so far.
func (p *Pool) ChunkCount() int { return len(p.chunks) }

// Chunk returns the chunk at the given index, for callers (such as
// dynamicpool's teardown walk) that need to inspect every slot across
// every chunk.
func (p *Pool) Chunk(chunkIndex int) *Chunk { return p.chunks[chunkIndex] }

// AllocateRaw reserves a raw slot without running any constructor,
// returning its address directly. ok is false if growing the pool
// failed.
func (p *Pool) AllocateRaw() (ptr unsafe.Pointer, ok bool) {
	ci, si, ok := p.Allocate()
	if !ok {
		return nil, false
	}
	return p.At(ci, si), true
}

// DeallocateRaw releases the slot addressed by ptr without running any
// destructor.
func (p *Pool) DeallocateRaw(ptr unsafe.Pointer) bool {
	return p.Deallocate(ptr)
}
