// Package dedup tracks message identifiers that have already been forwarded,
// so repeated polls of the same mailbox never deliver a message twice within
// one process lifetime.
package dedup

// Set is an in-memory set of dedup keys. The zero capacity form grows
// monotonically and is cleared only on process restart. A bounded Set evicts
// the oldest key once capacity is reached, trading exactness for a memory
// ceiling on long-uptime deployments.
//
// Set is not safe for concurrent use; it is owned and mutated by a single
// poll loop.
type Set struct {
	capacity int
	ids      map[string]struct{}
	order    []string // insertion order, tracked only when bounded
}

// NewSet creates an unbounded set.
func NewSet() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// NewBounded creates a set that holds at most capacity keys. A capacity of
// zero or less yields an unbounded set.
func NewBounded(capacity int) *Set {
	if capacity <= 0 {
		return NewSet()
	}
	return &Set{
		capacity: capacity,
		ids:      make(map[string]struct{}, capacity),
		order:    make([]string, 0, capacity),
	}
}

// Contains reports whether id has been recorded.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add records id, evicting the oldest key if the set is bounded and full.
// Adding an id already present is a no-op.
func (s *Set) Add(id string) {
	if _, ok := s.ids[id]; ok {
		return
	}
	if s.capacity > 0 && len(s.ids) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	s.ids[id] = struct{}{}
	if s.capacity > 0 {
		s.order = append(s.order, id)
	}
}

// Len returns the number of recorded keys.
func (s *Set) Len() int {
	return len(s.ids)
}
