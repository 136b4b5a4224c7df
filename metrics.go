package tangle

import "github.com/prometheus/client_golang/prometheus"

/*
Metrics is the small operator-facing surface for tracking hook-error
rate, cache-fill behavior and occupancy, wrapping plain prometheus
collectors rather than defining a bespoke metrics abstraction.
*/
type Metrics struct {
	HookErrors      prometheus.Counter
	ReadThroughHit  prometheus.Counter
	ReadThroughMiss prometheus.Counter
	Evictions       prometheus.Counter
	Len             prometheus.Gauge
	Cap             prometheus.Gauge
}

// NewMetrics constructs and registers the tangle's Prometheus
// collectors under namespace. A nil registerer is legal: the returned
// Metrics still works, it just isn't exposed anywhere.
func NewMetrics(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		HookErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tangle", Name: "hook_errors_total",
			Help: "Number of durable-storage hook calls that returned an error.",
		}),
		ReadThroughHit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tangle", Name: "read_through_hits_total",
			Help: "Number of cache misses resolved by a successful back-end fetch.",
		}),
		ReadThroughMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tangle", Name: "read_through_misses_total",
			Help: "Number of cache misses the back-end also reported as absent.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tangle", Name: "evictions_total",
			Help: "Number of vertices removed by LRU eviction.",
		}),
		Len: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tangle", Name: "len",
			Help: "Current number of cached vertices.",
		}),
		Cap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tangle", Name: "cap",
			Help: "Configured vertex cache capacity.",
		}),
	}

	if registerer != nil {
		for _, c := range []prometheus.Collector{m.HookErrors, m.ReadThroughHit, m.ReadThroughMiss, m.Evictions, m.Len, m.Cap} {
			registerer.MustRegister(c)
		}
	}

	return m
}
