package tangle

import "testing"

func TestEvictionQueuePutAndPopLRU(t *testing.T) {
	q := NewEvictionQueue(10)
	q.Put(idFromInt(1), 1)
	q.Put(idFromInt(2), 2)
	q.Put(idFromInt(3), 3)

	id, ok := q.PopLRU()
	if !ok || id != idFromInt(1) {
		t.Fatalf("expected id 1 to be least-recently-used, got %v (ok=%v)", id, ok)
	}
}

func TestEvictionQueueGetTouchRefreshesRecency(t *testing.T) {
	q := NewEvictionQueue(10)
	q.Put(idFromInt(1), 1)
	q.Put(idFromInt(2), 2)
	q.Put(idFromInt(3), 3)

	// Touching id 1 should move it to the front, so id 2 becomes the LRU.
	q.GetTouch(idFromInt(1), 10)

	id, ok := q.PopLRU()
	if !ok || id != idFromInt(2) {
		t.Fatalf("expected id 2 to be LRU after touching id 1, got %v", id)
	}
}

func TestEvictionQueueRemove(t *testing.T) {
	q := NewEvictionQueue(10)
	q.Put(idFromInt(1), 1)
	q.Remove(idFromInt(1))
	if q.Len() != 0 {
		t.Fatalf("expected len 0 after Remove, got %d", q.Len())
	}
	if _, ok := q.PopLRU(); ok {
		t.Fatal("expected PopLRU on empty queue to report false")
	}
}

func TestEvictionQueueCapFloorsAtOne(t *testing.T) {
	q := NewEvictionQueue(0)
	if q.Cap() != 1 {
		t.Fatalf("expected capacity to floor at 1, got %d", q.Cap())
	}
}
