package tangle

import "testing"

func TestChildrenMapAddChild(t *testing.T) {
	cm := NewChildrenMap(4)
	p := idFromInt(1)

	cm.AddChild(p, idFromInt(2))
	cm.AddChild(p, idFromInt(3))

	cs, ok := cm.Get(p)
	if !ok {
		t.Fatal("expected an entry for p")
	}
	if cs.Len() != 2 {
		t.Fatalf("expected 2 children, got %d", cs.Len())
	}
	if cs.Exhaustive() {
		t.Fatal("expected a set built only from AddChild to be non-exhaustive")
	}
}

func TestChildrenMapMergeFetchedMarksExhaustive(t *testing.T) {
	cm := NewChildrenMap(4)
	p := idFromInt(1)

	cm.AddChild(p, idFromInt(2))
	cs := cm.MergeFetched(p, []MessageId{idFromInt(3)})

	if !cs.Exhaustive() {
		t.Fatal("expected MergeFetched to mark the set exhaustive")
	}
	if cs.Len() != 2 {
		t.Fatalf("expected the merge of in-cache {2} and fetched {3} to have 2 members, got %d", cs.Len())
	}

	stored, ok := cm.Get(p)
	if !ok || !stored.Exhaustive() || stored.Len() != 2 {
		t.Fatalf("expected the stored entry to reflect the merge, got %+v (ok=%v)", stored, ok)
	}
}

func TestChildrenMapMergeFetchedOnAbsentParent(t *testing.T) {
	cm := NewChildrenMap(4)
	p := idFromInt(1)

	cs := cm.MergeFetched(p, []MessageId{idFromInt(2), idFromInt(3)})
	if !cs.Exhaustive() || cs.Len() != 2 {
		t.Fatalf("expected a fresh exhaustive set of 2, got %+v", cs)
	}
}

func TestChildSetCloneIsIndependent(t *testing.T) {
	cm := NewChildrenMap(4)
	p := idFromInt(1)
	cm.AddChild(p, idFromInt(2))

	cs, _ := cm.Get(p)
	clone := cs.Clone()
	cm.AddChild(p, idFromInt(3))

	if clone.Len() != 1 {
		t.Fatalf("expected clone to be unaffected by later mutation, got len %d", clone.Len())
	}
}

func TestChildrenMapRemove(t *testing.T) {
	cm := NewChildrenMap(4)
	p := idFromInt(1)
	cm.AddChild(p, idFromInt(2))
	cm.Remove(p)
	if _, ok := cm.Get(p); ok {
		t.Fatal("expected no entry after Remove")
	}
}
