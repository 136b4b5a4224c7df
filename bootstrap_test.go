package tangle

import (
	"context"
	"sync"
	"testing"
	"time"
)

type chanLoader struct {
	full, delta chan SEPEntry
}

func newChanLoader(fullEntries, deltaEntries []SEPEntry) *chanLoader {
	l := &chanLoader{
		full:  make(chan SEPEntry, len(fullEntries)),
		delta: make(chan SEPEntry, len(deltaEntries)),
	}
	for _, e := range fullEntries {
		l.full <- e
	}
	close(l.full)
	for _, e := range deltaEntries {
		l.delta <- e
	}
	close(l.delta)
	return l
}

func (l *chanLoader) FullSEPs() <-chan SEPEntry  { return l.full }
func (l *chanLoader) DeltaSEPs() <-chan SEPEntry { return l.delta }

type memKV[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V
}

func newMemKV[K comparable, V any]() *memKV[K, V] {
	return &memKV[K, V]{data: map[K]V{}}
}

func (m *memKV[K, V]) Insert(_ context.Context, k K, v V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
	return nil
}

func (m *memKV[K, V]) Fetch(_ context.Context, k K) (V, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[k]
	return v, ok, nil
}

func TestBootstrapWorkerRegistersSolidEntryPoints(t *testing.T) {
	tg := New[struct{}]()
	seps := newMemKV[SolidEntryPoint, MilestoneIndex]()
	snapshot := newMemKV[struct{}, SnapshotInfo]()

	loader := newChanLoader(
		[]SEPEntry{{SEP: idFromInt(1), Index: 10}},
		[]SEPEntry{{SEP: idFromInt(2), Index: 20}},
	)

	w := NewBootstrapWorker[struct{}](tg, seps, snapshot, nil)
	if err := w.Run(context.Background(), loader); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer w.Shutdown(context.Background())

	if idx, ok := tg.IsSolidEntryPoint(idFromInt(1)); !ok || idx != 10 {
		t.Fatalf("expected full SEP 1 -> 10, got (%d, %v)", idx, ok)
	}
	if idx, ok := tg.IsSolidEntryPoint(idFromInt(2)); !ok || idx != 20 {
		t.Fatalf("expected delta SEP 2 -> 20, got (%d, %v)", idx, ok)
	}
	if idx, ok := tg.IsSolidEntryPoint(NullMessageId); !ok || idx != 0 {
		t.Fatalf("expected the null message id registered at milestone 0, got (%d, %v)", idx, ok)
	}

	if _, ok, _ := seps.Fetch(context.Background(), idFromInt(1)); !ok {
		t.Fatal("expected the full SEP to be persisted through the KVStore")
	}
}

func TestBootstrapWorkerSeedsFromSnapshotInfo(t *testing.T) {
	tg := New[struct{}]()
	seps := newMemKV[SolidEntryPoint, MilestoneIndex]()
	snapshot := newMemKV[struct{}, SnapshotInfo]()
	snapshot.data[struct{}{}] = SnapshotInfo{
		Kind:         SnapshotFull,
		SEPIndex:     100,
		LedgerIndex:  100,
		PruningIndex: 50,
	}

	w := NewBootstrapWorker[struct{}](tg, seps, snapshot, nil)
	loader := newChanLoader(nil, nil)
	if err := w.Run(context.Background(), loader); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer w.Shutdown(context.Background())

	if tg.LatestMilestoneIndex() != 100 {
		t.Fatalf("expected latest milestone 100, got %d", tg.LatestMilestoneIndex())
	}
	if tg.SnapshotIndex() != 100 {
		t.Fatalf("expected snapshot index 100, got %d", tg.SnapshotIndex())
	}
	if tg.PruningIndex() != 50 {
		t.Fatalf("expected pruning index 50, got %d", tg.PruningIndex())
	}
}

func TestBootstrapWorkerShutdownStopsReporter(t *testing.T) {
	tg := New[struct{}]()
	seps := newMemKV[SolidEntryPoint, MilestoneIndex]()
	snapshot := newMemKV[struct{}, SnapshotInfo]()

	w := NewBootstrapWorker[struct{}](tg, seps, snapshot, nil)
	w.reportInterval = time.Millisecond

	loader := newChanLoader(nil, nil)
	if err := w.Run(context.Background(), loader); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case <-w.done:
	default:
		t.Fatal("expected the reporter goroutine to have exited")
	}
}
