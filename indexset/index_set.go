// Package indexset implements an intrusive doubly-linked set of integers
// drawn from [0, capacity). It is the free/occupied tracking primitive
// shared by the slab, itempool, and dynamicpool packages: every membership
// test, insert, remove, and traversal runs in O(1) except the linear scans
// (Find, FindForward, FindBackward) that exist only for completeness.
package indexset

import "fmt"

// none is the sentinel stored in a node's prev/next when it has no
// neighbor on that side, and returned by Prev/Next for a head/tail node.
const none = -1

// node is one slot of the intrusive linked list, embedded in an array
// indexed by the set's own index space rather than chained by pointer.
type node struct {
	prev, next int32
}

// Set is an intrusive doubly-linked set over [0, capacity). The same type
// serves both the "fixed-capacity" and "dynamic-capacity" variants spec'd
// for IndexSet: a fixed-capacity user simply never calls Reserve after
// construction, while a dynamic-capacity user grows it on demand.
type Set struct {
	nodes  []node
	member []bool
	head   int32
	tail   int32
	size   int
}

// New returns an empty Set with room for capacity indices.
func New(capacity int) *Set {
	s := &Set{}
	s.Reserve(capacity)
	return s
}

// NewFull returns a Set of the given capacity with every index already a
// member, in ascending order. This is the "all-free" construction mode
// spec'd for a Chunk's free-slot tracker.
func NewFull(capacity int) *Set {
	s := New(capacity)
	s.FillAll()
	return s
}

// Reserve grows the set's capacity to at least n without changing which
// indices are currently members. Newly added indices start absent.
func (s *Set) Reserve(n int) {
	for len(s.nodes) < n {
		s.nodes = append(s.nodes, node{prev: none, next: none})
		s.member = append(s.member, false)
	}
	if s.size == 0 {
		s.head, s.tail = none, none
	}
}

// Empty reports whether the set has no members.
func (s *Set) Empty() bool { return s.size == 0 }

// Size returns the number of members.
func (s *Set) Size() int { return s.size }

// Capacity returns the number of indices the set can hold.
func (s *Set) Capacity() int { return len(s.nodes) }

// Contains reports whether i is a member. Indices outside [0, capacity)
// are never members.
func (s *Set) Contains(i int) bool {
	if i < 0 || i >= len(s.nodes) {
		return false
	}
	return s.member[i]
}

// Front returns the head of the set. Precondition: !Empty().
func (s *Set) Front() int {
	if s.Empty() {
		panic("indexset: Front on empty set")
	}
	return int(s.head)
}

// Back returns the tail of the set. Precondition: !Empty().
func (s *Set) Back() int {
	if s.Empty() {
		panic("indexset: Back on empty set")
	}
	return int(s.tail)
}

// Prev returns the member preceding i in the set, or the sentinel -1 if i
// is the head. Precondition: Contains(i).
func (s *Set) Prev(i int) int {
	s.mustContain(i)
	return int(s.nodes[i].prev)
}

// Next returns the member following i in the set, or the sentinel -1 if i
// is the tail. Precondition: Contains(i).
func (s *Set) Next(i int) int {
	s.mustContain(i)
	return int(s.nodes[i].next)
}

func (s *Set) mustContain(i int) {
	if !s.Contains(i) {
		panic(fmt.Sprintf("indexset: index %d is not a member", i))
	}
}

// PushFront inserts i as the new head. Precondition: !Contains(i) and
// i < Capacity().
func (s *Set) PushFront(i int) {
	s.mustInsertable(i)
	s.nodes[i] = node{prev: none, next: s.head}
	if s.head != none {
		s.nodes[s.head].prev = int32(i)
	} else {
		s.tail = int32(i)
	}
	s.head = int32(i)
	s.member[i] = true
	s.size++
}

// PushBack inserts i as the new tail. Precondition: !Contains(i) and
// i < Capacity(). Push is an alias for PushBack.
func (s *Set) PushBack(i int) {
	s.mustInsertable(i)
	s.nodes[i] = node{prev: s.tail, next: none}
	if s.tail != none {
		s.nodes[s.tail].next = int32(i)
	} else {
		s.head = int32(i)
	}
	s.tail = int32(i)
	s.member[i] = true
	s.size++
}

// Push is an alias for PushBack.
func (s *Set) Push(i int) { s.PushBack(i) }

func (s *Set) mustInsertable(i int) {
	if i < 0 || i >= len(s.nodes) {
		panic(fmt.Sprintf("indexset: index %d out of range [0, %d)", i, len(s.nodes)))
	}
	if s.member[i] {
		panic(fmt.Sprintf("indexset: index %d already present", i))
	}
}

// PopFront removes and returns the head. ok is false if the set was
// empty, in which case no state changes.
func (s *Set) PopFront() (idx int, ok bool) {
	if s.Empty() {
		return 0, false
	}
	i := s.head
	s.unlink(i)
	return int(i), true
}

// PopBack removes and returns the tail. ok is false if the set was
// empty, in which case no state changes.
func (s *Set) PopBack() (idx int, ok bool) {
	if s.Empty() {
		return 0, false
	}
	i := s.tail
	s.unlink(i)
	return int(i), true
}

// Pop is an alias for PopFront.
func (s *Set) Pop() (int, bool) { return s.PopFront() }

// Remove unlinks i if present; a no-op if i is absent.
func (s *Set) Remove(i int) {
	if !s.Contains(i) {
		return
	}
	s.unlink(int32(i))
}

// unlink removes member i from the list without checking membership; the
// caller must have already verified Contains(i).
func (s *Set) unlink(i int32) {
	n := s.nodes[i]
	if n.prev != none {
		s.nodes[n.prev].next = n.next
	} else {
		s.head = n.next
	}
	if n.next != none {
		s.nodes[n.next].prev = n.prev
	} else {
		s.tail = n.prev
	}
	s.nodes[i] = node{prev: none, next: none}
	s.member[i] = false
	s.size--
}

// InsertForward inserts i immediately after pos. Precondition:
// Contains(pos), !Contains(i), i < Capacity().
func (s *Set) InsertForward(pos, i int) {
	s.mustContain(pos)
	s.mustInsertable(i)
	next := s.nodes[pos].next
	s.nodes[i] = node{prev: int32(pos), next: next}
	s.nodes[pos].next = int32(i)
	if next != none {
		s.nodes[next].prev = int32(i)
	} else {
		s.tail = int32(i)
	}
	s.member[i] = true
	s.size++
}

// InsertBackward inserts i immediately before pos. Precondition:
// Contains(pos), !Contains(i), i < Capacity().
func (s *Set) InsertBackward(pos, i int) {
	s.mustContain(pos)
	s.mustInsertable(i)
	prev := s.nodes[pos].prev
	s.nodes[i] = node{prev: prev, next: int32(pos)}
	s.nodes[pos].prev = int32(i)
	if prev != none {
		s.nodes[prev].next = int32(i)
	} else {
		s.head = int32(i)
	}
	s.member[i] = true
	s.size++
}

// Insert is an alias for InsertForward.
func (s *Set) Insert(pos, i int) { s.InsertForward(pos, i) }

// Find reports whether i is reachable by walking the list from the head.
// It exists for completeness alongside the O(1) Contains and is not on
// any hot path.
func (s *Set) Find(i int) bool { return s.FindForward(i) }

// FindForward walks from the head and reports whether i is reachable.
func (s *Set) FindForward(i int) bool {
	for cur := s.head; cur != none; cur = s.nodes[cur].next {
		if int(cur) == i {
			return true
		}
	}
	return false
}

// FindBackward walks from the tail and reports whether i is reachable.
func (s *Set) FindBackward(i int) bool {
	for cur := s.tail; cur != none; cur = s.nodes[cur].prev {
		if int(cur) == i {
			return true
		}
	}
	return false
}

// Clear empties the set. Already-linked members are unmarked by walking
// the list, so this costs O(Size()), not O(Capacity()); an already-empty
// set clears in O(1).
func (s *Set) Clear() {
	for cur := s.head; cur != none; {
		next := s.nodes[cur].next
		s.member[cur] = false
		s.nodes[cur] = node{prev: none, next: none}
		cur = next
	}
	s.head, s.tail, s.size = none, none, 0
}

// FillAll resets the set to contain every index in [0, Capacity()) in
// ascending order. This is the O(Capacity()) "all-free" reinitialization
// spec'd for a Chunk's free-slot tracker.
func (s *Set) FillAll() {
	s.Clear()
	n := len(s.nodes)
	for i := 0; i < n; i++ {
		s.nodes[i] = node{prev: int32(i - 1), next: int32(i + 1)}
		s.member[i] = true
	}
	if n > 0 {
		s.nodes[n-1].next = none
		s.head, s.tail = 0, int32(n-1)
		s.size = n
	}
}

// Construct deterministically rebuilds the set to equal seed, in the
// given order. Every index in seed must be in [0, Capacity()) and appear
// at most once.
func (s *Set) Construct(seed []int) {
	s.Clear()
	for _, i := range seed {
		s.PushBack(i)
	}
}

// Each calls fn for every member from front to back, stopping early if
// fn returns false.
func (s *Set) Each(fn func(i int) bool) {
	for cur := s.head; cur != none; cur = s.nodes[cur].next {
		if !fn(int(cur)) {
			return
		}
	}
}

// EachReverse calls fn for every member from back to front, stopping
// early if fn returns false.
func (s *Set) EachReverse(fn func(i int) bool) {
	for cur := s.tail; cur != none; cur = s.nodes[cur].prev {
		if !fn(int(cur)) {
			return
		}
	}
}
