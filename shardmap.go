package tangle

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

/*
shardMap is a fixed-shard-count concurrent map keyed by MessageId,
splitting a single lock-guarded map into N independently-locked
shards.

Splitting by shard means a writer touching key k never blocks a reader
of key k' in a different shard: each shard carries its own RWMutex, and
MessageId is already uniformly distributed (it's a message hash), so a
plain non-cryptographic hash of its bytes is enough to pick a shard —
there's no adversarial-input concern to defend against here.

Iteration is intentionally not exposed as a first-class operation; it's
only needed for tests and diagnostics, so ForEach below takes the
coarse route of locking one shard at a time.
*/
type shardMap[V any] struct {
	shards []*mapShard[V]
	mask   uint64
}

type mapShard[V any] struct {
	mu   sync.RWMutex
	data map[MessageId]V
}

// newShardMap builds a shardMap with shardCount shards, rounded up to
// the next power of two (required so the xxhash-derived index can be
// masked instead of taken modulo, which is both faster and unbiased
// for a power-of-two shard count).
func newShardMap[V any](shardCount int) *shardMap[V] {
	if shardCount < 1 {
		shardCount = 1
	}
	n := 1
	for n < shardCount {
		n <<= 1
	}
	shards := make([]*mapShard[V], n)
	for i := range shards {
		shards[i] = &mapShard[V]{data: make(map[MessageId]V)}
	}
	return &shardMap[V]{shards: shards, mask: uint64(n - 1)}
}

func (m *shardMap[V]) shardFor(id MessageId) *mapShard[V] {
	h := xxhash.Sum64(id[:])
	return m.shards[h&m.mask]
}

// Get returns the value stored for id, if any.
func (m *shardMap[V]) Get(id MessageId) (V, bool) {
	s := m.shardFor(id)
	s.mu.RLock()
	v, ok := s.data[id]
	s.mu.RUnlock()
	return v, ok
}

// Contains reports whether id is present.
func (m *shardMap[V]) Contains(id MessageId) bool {
	s := m.shardFor(id)
	s.mu.RLock()
	_, ok := s.data[id]
	s.mu.RUnlock()
	return ok
}

// Insert unconditionally stores v for id, overwriting any prior value.
func (m *shardMap[V]) Insert(id MessageId, v V) {
	s := m.shardFor(id)
	s.mu.Lock()
	s.data[id] = v
	s.mu.Unlock()
}

// InsertIfAbsent stores v for id only if id is not already present.
// Returns true iff this call created the entry. This is the atomic
// primitive message de-duplication is built on: the shard's exclusive
// lock linearizes concurrent InsertIfAbsent calls for ids that hash to
// the same shard, and ids in different shards never contend at all.
func (m *shardMap[V]) InsertIfAbsent(id MessageId, v V) bool {
	s := m.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.data[id]; found {
		return false
	}
	s.data[id] = v
	return true
}

// Remove deletes id, reporting whether it was present.
func (m *shardMap[V]) Remove(id MessageId) bool {
	s := m.shardFor(id)
	s.mu.Lock()
	_, found := s.data[id]
	delete(s.data, id)
	s.mu.Unlock()
	return found
}

// Update applies fn in place to the value stored for id, under that
// shard's exclusive lock, and reports whether id was present. fn is
// called at most once.
func (m *shardMap[V]) Update(id MessageId, fn func(V) V) bool {
	s := m.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[id]
	if !ok {
		return false
	}
	s.data[id] = fn(v)
	return true
}

// Len returns the total number of entries across all shards. Under
// concurrent mutation this is an approximation, not a point-in-time
// snapshot.
func (m *shardMap[V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.data)
		s.mu.RUnlock()
	}
	return total
}

// ForEach calls fn for every entry, one shard at a time. Intended for
// tests and diagnostics, not hot paths.
func (m *shardMap[V]) ForEach(fn func(MessageId, V)) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.data {
			fn(k, v)
		}
		s.mu.RUnlock()
	}
}
