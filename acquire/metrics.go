package acquire

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prodsnap_stage_attempts_total",
		Help: "Acquisition stage outcomes by disposition.",
	}, []string{"stage", "disposition"})

	acquireDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prodsnap_acquire_duration_seconds",
		Help:    "End-to-end duration of one acquisition run.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
