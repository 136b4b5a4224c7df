package tangle

import (
	"context"
	"time"

	"github.com/luxfi/log"
)

// SolidEntryPoint is the key type BootstrapWorker persists solid entry
// points under, an alias kept distinct from MessageId so a KVStore
// instantiation reads as intentional rather than incidental.
type SolidEntryPoint = MessageId

/*
BootstrapWorker drains a SnapshotLoader's full- and delta- solid entry
point channels into a Tangle, persists each through a KVStore, then
seeds the tangle's milestone bookkeeping from a durably-stored
SnapshotInfo. It's a one-shot startup procedure, not a long-lived
cache component — once Run returns, the tangle is ready to serve
traffic.

Run also starts a background reporter goroutine logging the tangle's
occupancy once a minute until Shutdown is called.
*/
type BootstrapWorker[T any] struct {
	tangle   *Tangle[T]
	seps     KVStore[SolidEntryPoint, MilestoneIndex]
	snapshot KVStore[struct{}, SnapshotInfo]
	log      log.Logger

	reportInterval time.Duration
	done           chan struct{}
	stopReport     chan struct{}
}

// NewBootstrapWorker builds a worker for t, persisting solid entry
// points through seps and reading the bootstrap snapshot position
// through snapshot. logger defaults to a no-op logger if nil.
func NewBootstrapWorker[T any](t *Tangle[T], seps KVStore[SolidEntryPoint, MilestoneIndex], snapshot KVStore[struct{}, SnapshotInfo], logger log.Logger) *BootstrapWorker[T] {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &BootstrapWorker[T]{
		tangle:         t,
		seps:           seps,
		snapshot:       snapshot,
		log:            logger,
		reportInterval: 60 * time.Second,
		done:           make(chan struct{}),
		stopReport:     make(chan struct{}),
	}
}

// Run drains loader's full SEP channel, then its delta SEP channel (in
// that order, matching the invariant that a delta snapshot always
// follows a full one), registers the null MessageId as a solid entry
// point at milestone 0, fetches the bootstrap SnapshotInfo, seeds the
// tangle's milestone/snapshot/pruning indices from it, and starts the
// periodic occupancy reporter. It returns only once both channels are
// closed and the snapshot info has been consumed.
func (w *BootstrapWorker[T]) Run(ctx context.Context, loader SnapshotLoader) error {
	for entry := range loader.FullSEPs() {
		w.registerSEP(ctx, entry)
	}
	for entry := range loader.DeltaSEPs() {
		w.registerSEP(ctx, entry)
	}

	w.tangle.AddSolidEntryPoint(NullMessageId, MilestoneIndex(0))

	info, found, err := w.snapshot.Fetch(ctx, struct{}{})
	if err != nil {
		return err
	}
	if found {
		w.tangle.UpdateLatestMilestoneIndex(info.SEPIndex)
		w.tangle.UpdateSnapshotIndex(info.SEPIndex)
		w.tangle.UpdatePruningIndex(info.PruningIndex)
	}

	go w.report()

	return nil
}

// Stats returns the tangle's current occupancy (length, capacity), the
// same numbers the periodic reporter logs and Tangle feeds into its
// Prometheus gauges on every insert.
func (w *BootstrapWorker[T]) Stats() (length, capacity int) {
	return w.tangle.Len(), w.tangle.Capacity()
}

func (w *BootstrapWorker[T]) registerSEP(ctx context.Context, entry SEPEntry) {
	w.tangle.AddSolidEntryPoint(entry.SEP, entry.Index)
	if err := w.seps.Insert(ctx, entry.SEP, entry.Index); err != nil {
		w.log.Warn("failed to persist solid entry point",
			log.Stringer("id", entry.SEP),
			log.Uint32("index", uint32(entry.Index)),
			log.Err(err),
		)
	}
}

// report logs the tangle's cache occupancy once per reportInterval
// until stopReport is closed.
func (w *BootstrapWorker[T]) report() {
	defer close(w.done)

	ticker := time.NewTicker(w.reportInterval)
	defer ticker.Stop()

	w.log.Info("tangle occupancy reporter running")
	for {
		select {
		case <-w.stopReport:
			w.log.Info("tangle occupancy reporter stopped")
			return
		case <-ticker.C:
			length, cap := w.Stats()
			status := "OK"
			if length > cap {
				status = "OVERLOADED"
			}
			w.log.Info("tangle cache occupancy",
				log.Int("len", length),
				log.Int("cap", cap),
				log.String("status", status),
			)
		}
	}
}

// Shutdown stops the occupancy reporter, waiting up to 5 seconds for
// it to exit; it polls every 20ms rather than blocking on a single
// receive so a caller can observe its own ctx cancellation in between.
func (w *BootstrapWorker[T]) Shutdown(ctx context.Context) error {
	close(w.stopReport)

	deadline := time.NewTimer(5 * time.Second)
	defer deadline.Stop()
	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-w.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			w.log.Error("tangle occupancy reporter did not stop in time")
			return nil
		case <-poll.C:
		}
	}
}
