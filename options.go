package tangle

import (
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
)

/*
Option is the standard functional-options pattern, applied to the
tangle's construction-time knobs.

	t := New[MyMeta](
	    WithCapacity[MyMeta](50_000),
	    WithHooks[MyMeta](myHooks),
	)

Each Option mutates the Tangle before New returns it, so adding a new
knob never changes New's signature.
*/
type Option[T any] func(*Tangle[T])

// WithCapacity sets the eviction queue's capacity. Default 100,000.
func WithCapacity[T any](n int) Option[T] {
	return func(t *Tangle[T]) {
		t.queue = NewEvictionQueue(n)
	}
}

// WithHooks installs the durable-storage back-end. Default NullHooks[T]
// (purely in-memory).
func WithHooks[T any](hooks HookSet[T]) Option[T] {
	return func(t *Tangle[T]) {
		t.hooks = hooks
	}
}

// WithLogger installs the structured logger used for hook-failure and
// inconsistency logging. Default a no-op logger.
func WithLogger[T any](logger log.Logger) Option[T] {
	return func(t *Tangle[T]) {
		t.log = logger
	}
}

// WithMetricsRegisterer registers the tangle's Prometheus collectors
// under namespace. If never called, the tangle has no Metrics and
// records no metrics at all.
func WithMetricsRegisterer[T any](namespace string, registerer prometheus.Registerer) Option[T] {
	return func(t *Tangle[T]) {
		t.metrics = NewMetrics(namespace, registerer)
	}
}

// WithVertexShards overrides the VertexMap's shard count. Default
// derived from GOMAXPROCS.
func WithVertexShards[T any](n int) Option[T] {
	return func(t *Tangle[T]) {
		t.vertices = NewVertexMap[T](n)
	}
}

// WithChildrenShards overrides the ChildrenMap's shard count. Default
// derived from GOMAXPROCS.
func WithChildrenShards[T any](n int) Option[T] {
	return func(t *Tangle[T]) {
		t.children = NewChildrenMap(n)
	}
}
