// Command tangledemo exercises a Tangle end to end: bootstrap from a
// stub snapshot, insert a couple of messages, and read their children
// back out.
package main

import (
	"context"
	"fmt"
	"time"

	tangle "github.com/tangled/tangle"

	"github.com/luxfi/log"
)

type demoMessage struct {
	p1, p2 tangle.MessageId
}

func (m demoMessage) Parent1() tangle.MessageId { return m.p1 }
func (m demoMessage) Parent2() tangle.MessageId { return m.p2 }

// stubLoader is a SnapshotLoader with no solid entry points, enough to
// drive BootstrapWorker.Run through its channel-draining logic.
type stubLoader struct {
	full, delta chan tangle.SEPEntry
}

func newStubLoader() *stubLoader {
	l := &stubLoader{
		full:  make(chan tangle.SEPEntry),
		delta: make(chan tangle.SEPEntry),
	}
	close(l.full)
	close(l.delta)
	return l
}

func (l *stubLoader) FullSEPs() <-chan tangle.SEPEntry  { return l.full }
func (l *stubLoader) DeltaSEPs() <-chan tangle.SEPEntry { return l.delta }

type noSnapshot struct{}

func (noSnapshot) Insert(context.Context, struct{}, tangle.SnapshotInfo) error {
	return nil
}

func (noSnapshot) Fetch(context.Context, struct{}) (tangle.SnapshotInfo, bool, error) {
	return tangle.SnapshotInfo{}, false, nil
}

type memSEPs struct {
	seen map[tangle.MessageId]tangle.MilestoneIndex
}

func (m *memSEPs) Insert(_ context.Context, id tangle.MessageId, idx tangle.MilestoneIndex) error {
	m.seen[id] = idx
	return nil
}

func (m *memSEPs) Fetch(_ context.Context, id tangle.MessageId) (tangle.MilestoneIndex, bool, error) {
	idx, ok := m.seen[id]
	return idx, ok, nil
}

func main() {
	logger := log.NewLogger("tangledemo")

	t := tangle.New[string](
		tangle.WithCapacity[string](1000),
		tangle.WithHooks[string](tangle.NullHooks[string]{}),
		tangle.WithLogger[string](logger),
	)

	worker := tangle.NewBootstrapWorker[string](t, &memSEPs{seen: map[tangle.MessageId]tangle.MilestoneIndex{}}, noSnapshot{}, logger)

	ctx := context.Background()
	if err := worker.Run(ctx, newStubLoader()); err != nil {
		logger.Error("bootstrap failed", log.Err(err))
		return
	}

	var root tangle.MessageId
	root[0] = 1

	var child tangle.MessageId
	child[0] = 2

	t.Insert(ctx, root, demoMessage{}, "root")
	t.Insert(ctx, child, demoMessage{p1: root, p2: root}, "child")

	children := t.GetChildren(ctx, root)
	fmt.Printf("root has %d known children (exhaustive=%v)\n", children.Len(), children.Exhaustive())

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := worker.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", log.Err(err))
	}
}
