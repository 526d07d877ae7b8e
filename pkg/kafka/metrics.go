package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Consumer outcomes.
const (
	outcomeProcessed    = "processed"
	outcomeFailed       = "failed"
	outcomeMalformed    = "malformed"
	outcomeDeadLettered = "dead_lettered"
)

var (
	consumedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_consumer_messages_total",
		Help: "Messages handled by the consumer, by outcome.",
	}, []string{"topic", "consumer_group", "outcome"})

	consumeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_consumer_processing_duration_seconds",
		Help:    "Time spent in the handler per message, retries included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic", "consumer_group"})

	publishedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_producer_messages_total",
		Help: "Publish attempts, by result.",
	}, []string{"topic", "result"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_producer_publish_duration_seconds",
		Help:    "Time spent writing a message to the brokers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
)
