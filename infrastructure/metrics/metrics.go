// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"socialflow/domain/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "socialflow"

var (
	handshakes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oauth_handshakes_total",
		Help:      "OAuth handshake outcomes by platform.",
	}, []string{"platform", "outcome"})

	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_transitions_total",
		Help:      "Post status transitions.",
	}, []string{"from", "to"})

	deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Per-platform delivery attempts by outcome.",
	}, []string{"platform", "outcome"})

	dispatchSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_sweeps_total",
		Help:      "Due-post sweeps run by the scheduler.",
	})
)

func HandshakeOutcome(platform model.Platform, outcome string) {
	handshakes.WithLabelValues(platform.Slug(), outcome).Inc()
}

// PostTransition counts a status change. from is empty for newly created posts.
func PostTransition(from, to model.PostStatus) {
	f := string(from)
	if f == "" {
		f = "new"
	}
	transitions.WithLabelValues(f, string(to)).Inc()
}

func Delivery(platform model.Platform, outcome string) {
	deliveries.WithLabelValues(platform.Slug(), outcome).Inc()
}

func DispatchSweep() {
	dispatchSweeps.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
