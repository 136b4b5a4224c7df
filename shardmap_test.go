package tangle

import (
	"sync"
	"testing"
)

func TestShardMapInsertIfAbsent(t *testing.T) {
	m := newShardMap[int](4)
	id := idFromInt(1)

	if !m.InsertIfAbsent(id, 10) {
		t.Fatal("expected first InsertIfAbsent to succeed")
	}
	if m.InsertIfAbsent(id, 20) {
		t.Fatal("expected second InsertIfAbsent on the same key to fail")
	}

	v, ok := m.Get(id)
	if !ok || v != 10 {
		t.Fatalf("expected (10, true), got (%d, %v)", v, ok)
	}
}

func TestShardMapConcurrentInsertIfAbsentExactlyOneWinner(t *testing.T) {
	m := newShardMap[int](8)
	id := idFromInt(42)

	const n = 64
	var wg sync.WaitGroup
	wins := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = m.InsertIfAbsent(id, i)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, w := range wins {
		if w {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winner, got %d", won)
	}
}

func TestShardMapRemove(t *testing.T) {
	m := newShardMap[int](4)
	id := idFromInt(1)

	if m.Remove(id) {
		t.Fatal("expected Remove on absent key to report false")
	}
	m.Insert(id, 5)
	if !m.Remove(id) {
		t.Fatal("expected Remove on present key to report true")
	}
	if m.Contains(id) {
		t.Fatal("expected key to be gone after Remove")
	}
}

func TestShardMapUpdate(t *testing.T) {
	m := newShardMap[int](4)
	id := idFromInt(1)

	if m.Update(id, func(v int) int { return v + 1 }) {
		t.Fatal("expected Update on absent key to report false")
	}

	m.Insert(id, 1)
	if !m.Update(id, func(v int) int { return v + 1 }) {
		t.Fatal("expected Update on present key to report true")
	}
	v, _ := m.Get(id)
	if v != 2 {
		t.Fatalf("expected 2, got %d", v)
	}
}

func TestShardMapLenAndForEach(t *testing.T) {
	m := newShardMap[int](4)
	for i := uint32(0); i < 10; i++ {
		m.Insert(idFromInt(i), int(i))
	}
	if m.Len() != 10 {
		t.Fatalf("expected len 10, got %d", m.Len())
	}

	seen := map[MessageId]int{}
	m.ForEach(func(id MessageId, v int) { seen[id] = v })
	if len(seen) != 10 {
		t.Fatalf("expected ForEach to visit 10 entries, saw %d", len(seen))
	}
}

func TestNewShardMapRoundsUpToPowerOfTwo(t *testing.T) {
	m := newShardMap[int](5)
	if len(m.shards) != 8 {
		t.Fatalf("expected 5 to round up to 8 shards, got %d", len(m.shards))
	}
}
