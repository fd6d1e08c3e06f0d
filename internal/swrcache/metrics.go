package swrcache

import "github.com/prometheus/client_golang/prometheus"

// cacheMetrics holds the optional Prometheus metrics for a single cache
// instance, registered under the "bifrost_cache" subsystem.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	refreshes prometheus.Counter
	errors    prometheus.Counter
	size      prometheus.Gauge
}

func newCacheMetrics(reg prometheus.Registerer, name string) *cacheMetrics {
	labels := prometheus.Labels{"cache": name}
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "bifrost",
			Subsystem:   "cache",
			Name:        "hits_total",
			Help:        "Total number of SWR cache reads served from a fresh entry.",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "bifrost",
			Subsystem:   "cache",
			Name:        "misses_total",
			Help:        "Total number of SWR cache first-ever (blocking) misses.",
			ConstLabels: labels,
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "bifrost",
			Subsystem:   "cache",
			Name:        "refreshes_total",
			Help:        "Total number of producer invocations, synchronous or background.",
			ConstLabels: labels,
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "bifrost",
			Subsystem:   "cache",
			Name:        "errors_total",
			Help:        "Total number of producer failures.",
			ConstLabels: labels,
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "bifrost",
			Subsystem:   "cache",
			Name:        "size",
			Help:        "Current number of keys tracked by the SWR cache.",
			ConstLabels: labels,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.refreshes, m.errors, m.size)
	}

	return m
}

func (m *cacheMetrics) recordHit()      { m.hits.Inc() }
func (m *cacheMetrics) recordMiss()     { m.misses.Inc() }
func (m *cacheMetrics) recordRefresh()  { m.refreshes.Inc() }
func (m *cacheMetrics) recordError()    { m.errors.Inc() }
func (m *cacheMetrics) updateSize(n int) { m.size.Set(float64(n)) }
