package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an http.Handler that serves the metrics registered
// against reg in the Prometheus text exposition format. TLS, if required,
// is expected to be terminated by an edge proxy in front of bifrost.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// NewRegistry creates a fresh Prometheus registry preloaded with the
// standard process and Go runtime collectors, matching what a production
// deployment's scrape target expects to find alongside bifrost's own
// metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return reg
}
