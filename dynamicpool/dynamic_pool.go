// Package dynamicpool implements a runtime type-dispatched collection of
// slab pools: the first Create (or NewItem) for a given type lazily builds a
// sub-pool sized for that type, and every subsequent operation for that
// type is routed to it by reflect.Type.
package dynamicpool

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/xaedes/chunky-mem/slab"
)

// DefaultAlignment is used for every sub-pool unless overridden via
// WithAlignment.
const DefaultAlignment = 16

// DefaultChunkBytes is the approximate size of one chunk's backing
// allocation, used to derive a per-type chunk slot count from
// slab.SlotStride.
const DefaultChunkBytes = 5 * 1024 * 1024

// Config holds DynamicPool construction parameters.
type Config struct {
	alignment  uintptr
	chunkBytes uintptr
}

// Option configures a DynamicPool at construction time.
type Option func(*Config)

// WithAlignment overrides the alignment used for every sub-pool.
func WithAlignment(alignment uintptr) Option {
	return func(c *Config) { c.alignment = alignment }
}

// WithChunkBytes overrides the approximate per-chunk byte budget used to
// derive each sub-pool's chunk slot count.
func WithChunkBytes(n uintptr) Option {
	return func(c *Config) { c.chunkBytes = n }
}

// destructor is a type-erased finalizer run on a slot's address before
// its memory is released.
type destructor func(unsafe.Pointer)

// subPool pairs one type's slab.Pool with the trampoline that knows how
// to destruct a *T living at a raw address.
type subPool struct {
	pool    *slab.Pool
	destroy destructor
}

// DynamicPool is a collection of slab pools keyed by reflect.Type,
// created lazily on first use per type.
type DynamicPool struct {
	cfg  Config
	pool map[reflect.Type]*subPool
}

// New constructs an empty DynamicPool.
func New(opts ...Option) *DynamicPool {
	cfg := Config{alignment: DefaultAlignment, chunkBytes: DefaultChunkBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DynamicPool{
		cfg:  cfg,
		pool: make(map[reflect.Type]*subPool),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// getOrCreate returns the sub-pool for T, building it (and its
// destructor trampoline) on first use.
func getOrCreate[T any](d *DynamicPool) (*subPool, error) {
	rt := typeOf[T]()
	if sp, ok := d.pool[rt]; ok {
		return sp, nil
	}

	var zero T
	stride := slab.SlotStride(unsafe.Sizeof(zero), d.cfg.alignment)
	slotCount := int(d.cfg.chunkBytes / stride)
	if slotCount <= 0 {
		slotCount = 1
	}

	pool, err := slab.NewPool(unsafe.Sizeof(zero), d.cfg.alignment, slotCount)
	if err != nil {
		return nil, fmt.Errorf("dynamicpool: building sub-pool for %v: %w", rt, err)
	}

	sp := &subPool{
		pool: pool,
		destroy: func(ptr unsafe.Pointer) {
			typed := (*T)(ptr)
			var zero T
			*typed = zero
		},
	}
	d.pool[rt] = sp
	return sp, nil
}

// Create allocates a slot for T, initializes it to value, and returns
// its address. ok is false if T's sub-pool could not be built (for
// example, an alignment that is not a power of two) or failed to grow.
func Create[T any](d *DynamicPool, value T) (ptr *T, ok bool) {
	sp, err := getOrCreate[T](d)
	if err != nil {
		return nil, false
	}
	raw, ok := sp.pool.AllocateRaw()
	if !ok {
		return nil, false
	}
	typed := (*T)(raw)
	*typed = value
	return typed, true
}

// NewItem allocates a slot for T holding the zero value.
func NewItem[T any](d *DynamicPool) (ptr *T, ok bool) {
	var zero T
	return Create[T](d, zero)
}

// Destroy runs T's destructor at ptr and releases the slot. If T has no
// sub-pool or T's sub-pool does not own ptr, it falls back to DestroyAny.
// It returns false, with no state change, if no sub-pool owns ptr.
func Destroy[T any](d *DynamicPool, ptr *T) bool {
	rt := typeOf[T]()
	raw := unsafe.Pointer(ptr)
	sp, ok := d.pool[rt]
	if !ok || !sp.pool.Contains(raw) {
		return d.DestroyAny(raw)
	}
	sp.destroy(raw)
	return sp.pool.Deallocate(raw)
}

// DestroyAny runs the registered destructor for ptr's dynamic type and
// releases its slot, without the caller naming T. It scans every
// registered sub-pool to find the one that owns ptr. ok is false if no
// sub-pool owns ptr.
func (d *DynamicPool) DestroyAny(ptr unsafe.Pointer) bool {
	for _, sp := range d.pool {
		if sp.pool.Contains(ptr) {
			sp.destroy(ptr)
			return sp.pool.Deallocate(ptr)
		}
	}
	return false
}

// Contains reports whether ptr addresses a live T owned by this pool.
func Contains[T any](d *DynamicPool, ptr *T) bool {
	rt := typeOf[T]()
	sp, ok := d.pool[rt]
	if !ok {
		return false
	}
	return sp.pool.Contains(unsafe.Pointer(ptr))
}

// ContainsAny reports whether ptr addresses a live value of any
// registered type.
func (d *DynamicPool) ContainsAny(ptr unsafe.Pointer) bool {
	for _, sp := range d.pool {
		if sp.pool.Contains(ptr) {
			return true
		}
	}
	return false
}

// Find locates the chunk/slot index pair addressed by ptr, for the
// sub-pool registered for T.
func Find[T any](d *DynamicPool, ptr *T) (chunkIndex, slotIndex int, ok bool) {
	rt := typeOf[T]()
	sp, ok := d.pool[rt]
	if !ok {
		return 0, 0, false
	}
	return sp.pool.Find(unsafe.Pointer(ptr))
}

// GetItem reconstructs the typed pointer for a chunk/slot index pair
// previously returned by Find, within T's sub-pool.
func GetItem[T any](d *DynamicPool, chunkIndex, slotIndex int) *T {
	sp := d.pool[typeOf[T]()]
	return (*T)(sp.pool.At(chunkIndex, slotIndex))
}

// TypeCount returns the number of distinct types with a registered
// sub-pool.
func (d *DynamicPool) TypeCount() int { return len(d.pool) }

// HasType reports whether T has a registered sub-pool.
func HasType[T any](d *DynamicPool) bool {
	_, ok := d.pool[typeOf[T]()]
	return ok
}

// Close destructs every live value across every registered sub-pool, in
// chunk order within each type (the order across types is not
// defined), then drops
// all sub-pools. It must be called at most once; Close on an empty
// DynamicPool is a no-op.
func (d *DynamicPool) Close() {
	for _, sp := range d.pool {
		for ci := 0; ci < sp.pool.ChunkCount(); ci++ {
			chunk := sp.pool.Chunk(ci)
			chunk.OccupiedSlots().Each(func(si int) bool {
				sp.destroy(chunk.At(si))
				return true
			})
		}
	}
	d.pool = make(map[reflect.Type]*subPool)
}
