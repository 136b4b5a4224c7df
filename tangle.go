package tangle

import (
	"context"
	"encoding/hex"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/luxfi/log"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the default eviction queue capacity.
const DefaultCapacity = 100_000

func defaultShardCount() int {
	n := runtime.GOMAXPROCS(0) * 4
	if n < 16 {
		n = 16
	}
	return n
}

/*
Tangle is the cache facade coordinating VertexMap, ChildrenMap and
EvictionQueue, implementing read-through, write-through, de-duplication
and eviction.

T is the caller-chosen metadata type, expected to be a cheap value type
(cloneable by plain assignment), though this isn't enforced by the Go
type system beyond `any`.
*/
type Tangle[T any] struct {
	vertices *VertexMap[T]
	children *ChildrenMap
	queue    *EvictionQueue

	hooks HookSet[T]
	log   log.Logger

	metrics *Metrics

	counter atomic.Uint64
	sf      singleflight.Group

	sepMu sync.RWMutex
	seps  map[MessageId]MilestoneIndex

	latestMilestone atomic.Uint32
	snapshotIndex   atomic.Uint32
	pruningIndex    atomic.Uint32
}

// New builds an empty Tangle with default capacity (100,000),
// NullHooks, a no-op logger, and no registered metrics, then applies
// opts.
func New[T any](opts ...Option[T]) *Tangle[T] {
	shards := defaultShardCount()
	t := &Tangle[T]{
		vertices: NewVertexMap[T](shards),
		children: NewChildrenMap(shards),
		queue:    NewEvictionQueue(DefaultCapacity),
		hooks:    NullHooks[T]{},
		log:      log.NewNoOpLogger(),
		seps:     make(map[MessageId]MilestoneIndex),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.reportOccupancy()
	return t
}

// Hooks returns the configured durable-storage hook set.
func (t *Tangle[T]) Hooks() HookSet[T] {
	return t.hooks
}

func (t *Tangle[T]) nextTimestamp() uint64 {
	return t.counter.Add(1)
}

func (t *Tangle[T]) logHookErr(op string, id MessageId, err error) {
	if t.metrics != nil {
		t.metrics.HookErrors.Inc()
	}
	t.log.Warn("hook call failed",
		log.String("op", op),
		log.Stringer("id", id),
		log.Err(err),
	)
}

func (t *Tangle[T]) reportOccupancy() {
	if t.metrics == nil {
		return
	}
	t.metrics.Len.Set(float64(t.vertices.Len()))
	t.metrics.Cap.Set(float64(t.queue.Cap()))
}

func (t *Tangle[T]) logInconsistency(id MessageId) {
	t.log.Error("eviction popped an id not present in the vertex map",
		log.Stringer("id", id),
	)
}

// sfKey derives the singleflight coalescing key for id. It uses the
// full 32 bytes (unlike MessageId.String's 4-byte display shorthand)
// because a collision here would incorrectly merge two distinct ids'
// read-through fetches into one.
func sfKey(id MessageId) string {
	return hex.EncodeToString(id[:])
}

// insertVertex performs the insert-if-absent into VertexMap, adds to
// ChildrenMap for both parents, and assigns an LRU timestamp. Returns
// whether this call created the vertex.
func (t *Tangle[T]) insertVertex(id MessageId, msg Message, meta T) bool {
	created := t.vertices.InsertIfAbsent(id, NewVertex(msg, meta))
	if !created {
		return false
	}

	parents := [2]MessageId{msg.Parent1(), msg.Parent2()}
	for _, p := range parents {
		t.children.AddChild(p, id)
	}
	t.queue.Put(id, t.nextTimestamp())
	return true
}

// Insert records msg/meta under id: it inserts into VertexMap and
// ChildrenMap, durably records both parent edges and the vertex
// itself via hooks, and runs eviction. Returns a MessageRef iff this
// call created a new vertex; nil if id was already present — message
// de-duplication is enforced by insertVertex's use of
// VertexMap.InsertIfAbsent, which is the sole linearization point.
func (t *Tangle[T]) Insert(ctx context.Context, id MessageId, msg Message, meta T) MessageRef {
	if !t.insertVertex(id, msg, meta) {
		return nil
	}

	parents := [2]MessageId{msg.Parent1(), msg.Parent2()}
	for _, p := range parents {
		if err := t.hooks.InsertApprover(ctx, p, id); err != nil {
			t.logHookErr("insert_approver", id, err)
		}
	}
	if err := t.hooks.Insert(ctx, id, msg, meta); err != nil {
		t.logHookErr("insert", id, err)
	}

	t.evict()
	t.reportOccupancy()
	return msg
}

// pullMessage implements the read-through path: on a cache miss it
// consults the durable-storage hooks and fills the cache on a hit.
// Concurrent pulls for the same id are coalesced via singleflight, so
// N simultaneous misses on id result in exactly one HookSet.Get call.
func (t *Tangle[T]) pullMessage(ctx context.Context, id MessageId) bool {
	if t.vertices.Contains(id) {
		return true
	}

	v, _, _ := t.sf.Do(sfKey(id), func() (any, error) {
		msg, meta, found, err := t.hooks.Get(ctx, id)
		if err != nil {
			t.logHookErr("get", id, err)
			return false, nil
		}
		if !found {
			return false, nil
		}
		// No write-through here: the data already exists in the
		// back-end it came from.
		t.insertVertex(id, msg, meta)
		t.evict()
		t.reportOccupancy()
		return true, nil
	})

	ok := v.(bool)
	if t.metrics != nil {
		if ok {
			t.metrics.ReadThroughHit.Inc()
		} else {
			t.metrics.ReadThroughMiss.Inc()
		}
	}
	return ok
}

// getInner returns the cached vertex for id, if present, refreshing
// its LRU priority in a single critical section.
func (t *Tangle[T]) getInner(id MessageId) (Vertex[T], bool) {
	vtx, ok := t.vertices.Get(id)
	if !ok {
		return Vertex[T]{}, false
	}
	t.queue.GetTouch(id, t.nextTimestamp())
	return vtx, true
}

// Contains returns true iff id is cached, or the back-end returns a
// value for it (causing a cache fill).
func (t *Tangle[T]) Contains(ctx context.Context, id MessageId) bool {
	return t.vertices.Contains(id) || t.pullMessage(ctx, id)
}

// Get is read-through; it returns a MessageRef on hit.
func (t *Tangle[T]) Get(ctx context.Context, id MessageId) (MessageRef, bool) {
	t.pullMessage(ctx, id)
	vtx, ok := t.getInner(id)
	if !ok {
		return nil, false
	}
	return vtx.Message(), true
}

// GetMetadata is read-through; it returns a cloned T on hit.
func (t *Tangle[T]) GetMetadata(ctx context.Context, id MessageId) (T, bool) {
	t.pullMessage(ctx, id)
	vtx, ok := t.getInner(id)
	if !ok {
		var zero T
		return zero, false
	}
	return vtx.Metadata(), true
}

// GetMetadataMaybe is cache-only; it never touches the back-end.
func (t *Tangle[T]) GetMetadataMaybe(id MessageId) (T, bool) {
	vtx, ok := t.vertices.Get(id)
	if !ok {
		var zero T
		return zero, false
	}
	return vtx.Metadata(), true
}

// GetVertex is read-through; it returns the vertex itself.
func (t *Tangle[T]) GetVertex(ctx context.Context, id MessageId) (Vertex[T], bool) {
	t.pullMessage(ctx, id)
	return t.getInner(id)
}

// UpdateMetadata performs read-through, applies update to the
// metadata in place, writes the result through to the back-end, and
// returns the updated metadata. update may close over an outer
// variable to report an arbitrary result of its own. Deliberately uses
// a plain cache lookup (not getInner) here: unlike Get/GetVertex,
// UpdateMetadata does not touch LRU recency on its own.
func (t *Tangle[T]) UpdateMetadata(ctx context.Context, id MessageId, update func(*T)) (T, bool) {
	t.pullMessage(ctx, id)

	vtx, ok := t.vertices.Get(id)
	if !ok {
		var zero T
		return zero, false
	}

	meta := vtx.Metadata()
	update(&meta)
	newVtx := vtx.withMetadata(meta)
	t.vertices.Insert(id, newVtx)

	if err := t.hooks.Insert(ctx, id, newVtx.Message(), meta); err != nil {
		t.logHookErr("insert", id, err)
	}

	return meta, true
}

// GetChildren returns the children of id if known. If the in-cache
// set is already exhaustive it's cloned and returned directly;
// otherwise the back-end is consulted, merged into the in-cache set,
// and the result is marked exhaustive. If the back-end call fails or
// reports the list as unknown, the in-cache set is returned unchanged
// and stays non-exhaustive.
func (t *Tangle[T]) GetChildren(ctx context.Context, id MessageId) ChildSet {
	if cs, ok := t.children.Get(id); ok && cs.Exhaustive() {
		return cs
	}

	fetched, found, err := t.hooks.FetchApprovers(ctx, id)
	if err != nil {
		t.logHookErr("fetch_approvers", id, err)
	}
	if err != nil || !found {
		cs, _ := t.children.Get(id)
		return cs
	}
	return t.children.MergeFetched(id, fetched)
}

// NumChildren is the size of GetChildren(id).
func (t *Tangle[T]) NumChildren(ctx context.Context, id MessageId) int {
	return t.GetChildren(ctx, id).Len()
}

// Len returns the number of cached vertices.
func (t *Tangle[T]) Len() int {
	return t.vertices.Len()
}

// IsEmpty reports whether the tangle has no cached vertices.
func (t *Tangle[T]) IsEmpty() bool {
	return t.Len() == 0
}

// Capacity returns the configured eviction queue capacity.
func (t *Tangle[T]) Capacity() int {
	return t.queue.Cap()
}

// AddSolidEntryPoint registers id as a solid entry point at milestone
// idx. Repeated registration of the same id is a no-op in effect:
// re-assigning the same key to the same value changes nothing
// observable.
func (t *Tangle[T]) AddSolidEntryPoint(id MessageId, idx MilestoneIndex) {
	t.sepMu.Lock()
	t.seps[id] = idx
	t.sepMu.Unlock()
}

// IsSolidEntryPoint reports whether id has been registered as a solid
// entry point, returning its milestone index if so.
func (t *Tangle[T]) IsSolidEntryPoint(id MessageId) (MilestoneIndex, bool) {
	t.sepMu.RLock()
	defer t.sepMu.RUnlock()
	idx, ok := t.seps[id]
	return idx, ok
}

func (t *Tangle[T]) UpdateLatestMilestoneIndex(idx MilestoneIndex) {
	t.latestMilestone.Store(uint32(idx))
}

func (t *Tangle[T]) LatestMilestoneIndex() MilestoneIndex {
	return MilestoneIndex(t.latestMilestone.Load())
}

func (t *Tangle[T]) UpdateSnapshotIndex(idx MilestoneIndex) {
	t.snapshotIndex.Store(uint32(idx))
}

func (t *Tangle[T]) SnapshotIndex() MilestoneIndex {
	return MilestoneIndex(t.snapshotIndex.Load())
}

func (t *Tangle[T]) UpdatePruningIndex(idx MilestoneIndex) {
	t.pruningIndex.Store(uint32(idx))
}

func (t *Tangle[T]) PruningIndex() MilestoneIndex {
	return MilestoneIndex(t.pruningIndex.Load())
}

// Shutdown flushes any deferred state. Reserved for future use — today
// the tangle itself holds nothing that needs flushing;
// BootstrapWorker.Shutdown handles the reporter goroutine's lifecycle
// separately.
func (t *Tangle[T]) Shutdown(context.Context) error {
	return nil
}

// evict runs after every insert: while the vertex map's length exceeds
// the eviction queue's capacity, pop the least-recently-used id and
// remove it from both VertexMap and ChildrenMap, settling the cache
// size at exactly the configured capacity.
func (t *Tangle[T]) evict() {
	for t.vertices.Len() > t.queue.Cap() {
		id, ok := t.queue.PopLRU()
		if !ok {
			return
		}
		if !t.vertices.Remove(id) {
			t.logInconsistency(id)
			continue
		}
		t.children.Remove(id)
		if t.metrics != nil {
			t.metrics.Evictions.Inc()
		}
	}
}
