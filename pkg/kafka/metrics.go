package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish results.
const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	// PublishTotal counts publish attempts by topic and result.
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "publish_total",
			Help:      "Kafka publish attempts by topic and result",
		},
		[]string{"topic", "result"},
	)

	// PublishDuration observes how long a synchronous publish takes.
	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"topic"},
	)

	// MessageBytes observes encoded event sizes.
	MessageBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "message_bytes",
			Help:      "Size of published Kafka message values in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"topic"},
	)
)
