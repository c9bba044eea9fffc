// Package prom exports cache metrics through Prometheus.
package prom

import (
	"github.com/IvanBrykalov/shardttl/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	lookups *prometheus.CounterVec
	hits    prometheus.Counter
	stale   prometheus.Counter
	misses  prometheus.Counter
	evicts  *prometheus.CounterVec
	entries prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
//
// It panics if the metrics are already registered on reg, like MustRegister.
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "lookups_total",
				Help:        "Cache lookups by result (hit, stale, miss)",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entries",
			Help:        "Number of resident entries, expired ones included",
			ConstLabels: constLabels,
		}),
	}
	// Resolve label children once; WithLabelValues hashes on every call.
	a.hits = a.lookups.WithLabelValues("hit")
	a.stale = a.lookups.WithLabelValues("stale")
	a.misses = a.lookups.WithLabelValues("miss")

	reg.MustRegister(a.lookups, a.evicts, a.entries)
	return a
}

// Hit counts a lookup that found a fresh value.
func (a *Adapter) Hit() { a.hits.Inc() }

// StaleHit counts a lookup that found an expired value.
func (a *Adapter) StaleHit() { a.stale.Inc() }

// Miss counts a lookup that found nothing.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates the resident entries gauge.
func (a *Adapter) Size(entries int) { a.entries.Set(float64(entries)) }

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
