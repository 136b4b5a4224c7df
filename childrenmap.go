package tangle

// ChildSet is the value type ChildrenMap stores for a parent:
// the set of known child ids, and whether that set is exhaustive —
// known to include every child, because a back-end fetch has merged
// into it at least once.
type ChildSet struct {
	ids        map[MessageId]struct{}
	exhaustive bool
}

func newChildSet(initial ...MessageId) ChildSet {
	ids := make(map[MessageId]struct{}, len(initial))
	for _, id := range initial {
		ids[id] = struct{}{}
	}
	return ChildSet{ids: ids}
}

// Clone returns an independent copy of the set, safe for a caller to
// keep after the map's lock has been released.
func (c ChildSet) Clone() ChildSet {
	cp := make(map[MessageId]struct{}, len(c.ids))
	for id := range c.ids {
		cp[id] = struct{}{}
	}
	return ChildSet{ids: cp, exhaustive: c.exhaustive}
}

// Slice returns the child ids as a slice, in no particular order.
func (c ChildSet) Slice() []MessageId {
	out := make([]MessageId, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	return out
}

func (c ChildSet) Len() int {
	return len(c.ids)
}

func (c ChildSet) Exhaustive() bool {
	return c.exhaustive
}

// ChildrenMap is the concurrent MessageId -> (child set, exhaustive)
// index. It is lazily populated: an entry is created on first parent
// reference or first fetch, and destroyed when the parent is evicted
// from VertexMap.
type ChildrenMap struct {
	m *shardMap[ChildSet]
}

func NewChildrenMap(shardCount int) *ChildrenMap {
	return &ChildrenMap{m: newShardMap[ChildSet](shardCount)}
}

// AddChild records that child references parent. If parent has no
// entry yet, one is created with exhaustive=false; if an entry already
// exists its exhaustive flag is left unchanged.
func (cm *ChildrenMap) AddChild(parent, child MessageId) {
	add := func(cs ChildSet) ChildSet {
		cs.ids[child] = struct{}{}
		return cs
	}
	// If a concurrent AddChild/MergeFetched creates the entry between
	// the update and the insert, retry the update against it.
	for !cm.m.Update(parent, add) {
		if cm.m.InsertIfAbsent(parent, newChildSet(child)) {
			return
		}
	}
}

// Get returns a clone of the child set for parent, if any entry exists
// (exhaustive or not).
func (cm *ChildrenMap) Get(parent MessageId) (ChildSet, bool) {
	cs, ok := cm.m.Get(parent)
	if !ok {
		return ChildSet{}, false
	}
	return cs.Clone(), true
}

// MergeFetched merges a back-end-provided, authoritative child list
// into the in-cache set for parent and marks the result exhaustive: a
// children entry only becomes exhaustive once a back-end fetch has
// been merged into it. Returns the merged, cloned set.
func (cm *ChildrenMap) MergeFetched(parent MessageId, fetched []MessageId) ChildSet {
	merge := func(cs ChildSet) ChildSet {
		for _, id := range fetched {
			cs.ids[id] = struct{}{}
		}
		cs.exhaustive = true
		return cs
	}

	var merged ChildSet
	if cm.m.Update(parent, func(cs ChildSet) ChildSet {
		merged = merge(cs)
		return merged
	}) {
		return merged.Clone()
	}

	fresh := merge(newChildSet())
	if cm.m.InsertIfAbsent(parent, fresh) {
		return fresh.Clone()
	}
	// Lost the race to a concurrent AddChild/MergeFetched: retry the
	// update against whatever now exists.
	cm.m.Update(parent, func(cs ChildSet) ChildSet {
		merged = merge(cs)
		return merged
	})
	return merged.Clone()
}

func (cm *ChildrenMap) Remove(parent MessageId) {
	cm.m.Remove(parent)
}

func (cm *ChildrenMap) Len() int {
	return cm.m.Len()
}
