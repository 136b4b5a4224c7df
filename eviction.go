package tangle

import (
	"container/list"
	"sync"
)

/*
EvictionQueue is the bounded LRU priority tracker. It stores
MessageId -> logical timestamp pairs only; the authoritative value
lives in VertexMap. A map[MessageId]*list.Element paired with a
*list.List gives O(1) touch/evict without a custom heap.

Serialized by a single short-held mutex rather than the sharded
approach used for VertexMap/ChildrenMap: the queue's critical sections
(Put/GetTouch/PopLRU) are O(1) pointer fixups, so sharding here would
add complexity without relieving real contention.
*/
type EvictionQueue struct {
	mu   sync.Mutex
	ll   *list.List
	elem map[MessageId]*list.Element
	cap  int
}

type evictionEntry struct {
	id MessageId
	ts uint64
}

// NewEvictionQueue builds a queue with the given capacity. A
// non-positive capacity is treated as 1, since a zero-capacity LRU has
// no sensible eviction behavior.
func NewEvictionQueue(capacity int) *EvictionQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &EvictionQueue{
		ll:   list.New(),
		elem: make(map[MessageId]*list.Element, capacity),
		cap:  capacity,
	}
}

// Put inserts or refreshes id's priority to ts and moves it to the
// most-recently-used end.
func (q *EvictionQueue) Put(id MessageId, ts uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if el, ok := q.elem[id]; ok {
		el.Value.(*evictionEntry).ts = ts
		q.ll.MoveToFront(el)
		return
	}
	el := q.ll.PushFront(&evictionEntry{id: id, ts: ts})
	q.elem[id] = el
}

// GetTouch returns the current priority for id, refreshing it to
// newTS and marking id most-recently-used, in a single critical
// section. If id has no entry yet (e.g. it's transiently missing
// during eviction), one is created at priority 0 and placed at the
// least-recently-used end, rather than treated as freshly touched.
func (q *EvictionQueue) GetTouch(id MessageId, newTS uint64) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if el, ok := q.elem[id]; ok {
		old := el.Value.(*evictionEntry).ts
		el.Value.(*evictionEntry).ts = newTS
		q.ll.MoveToFront(el)
		return old
	}
	el := q.ll.PushBack(&evictionEntry{id: id, ts: 0})
	q.elem[id] = el
	return 0
}

// PopLRU removes and returns the least-recently-used entry. ok is
// false iff the queue is empty.
func (q *EvictionQueue) PopLRU() (id MessageId, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	el := q.ll.Back()
	if el == nil {
		return MessageId{}, false
	}
	entry := el.Value.(*evictionEntry)
	q.ll.Remove(el)
	delete(q.elem, entry.id)
	return entry.id, true
}

// Remove drops id from the queue if present, without regard to LRU
// position. Used when a vertex is removed by a path other than normal
// eviction (there isn't one today, but it keeps the queue's invariants
// independently checkable).
func (q *EvictionQueue) Remove(id MessageId) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if el, ok := q.elem[id]; ok {
		q.ll.Remove(el)
		delete(q.elem, id)
	}
}

func (q *EvictionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ll.Len()
}

func (q *EvictionQueue) Cap() int {
	// cap is set once at construction and never mutated afterward
	// except by the WithCapacity option replacing the queue wholesale, so
	// this doesn't need the mutex.
	return q.cap
}
