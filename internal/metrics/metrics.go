// Package metrics exposes domain counters on the default prometheus
// registry, served alongside the HTTP metrics at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PresenceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jurados",
		Name:      "presence_transitions_total",
		Help:      "Check-in and check-out transitions by result.",
	}, []string{"transition", "result"})

	ProfileSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jurados",
		Name:      "profile_saves_total",
		Help:      "Profile create-or-update attempts by outcome.",
	}, []string{"outcome"})

	SkippedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jurados",
		Name:      "skipped_records_total",
		Help:      "Records excluded from listings because they failed to decode or were inconsistent.",
	}, []string{"record_type"})
)
