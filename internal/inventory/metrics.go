package inventory

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// MetricsSubsystem is a subsystem shared by all metrics exposed by this
// package.
const MetricsSubsystem = "inventory"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of messages handled, by phase.
	Messages metrics.Counter
	// Number of messages dropped without response, by reason.
	IgnoredMessages metrics.Counter
	// Number of messages rejected as protocol violations, by phase.
	ProtocolViolations metrics.Counter
	// Number of blocks in the block store.
	Blocks metrics.Gauge
	// Number of transactions in the memory pool.
	Transactions metrics.Gauge
	// Number of requests sent for missing ancestor blocks.
	AncestorRequests metrics.Counter
	// Number of missing ancestors not requested because the backfill depth was exceeded.
	BackfillLimitHits metrics.Counter
	// Number of advertisements broadcast for newly stored objects, by kind.
	Broadcasts metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Messages: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "messages",
			Help:      "Number of inventory messages handled.",
		}, withLabel(labels, "phase")).With(labelsAndValues...),
		IgnoredMessages: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "ignored_messages",
			Help:      "Number of inventory messages dropped without response.",
		}, withLabel(labels, "reason")).With(labelsAndValues...),
		ProtocolViolations: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "protocol_violations",
			Help:      "Number of inventory messages rejected as protocol violations.",
		}, withLabel(labels, "phase")).With(labelsAndValues...),
		Blocks: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "blocks",
			Help:      "Number of blocks in the block store.",
		}, labels).With(labelsAndValues...),
		Transactions: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "transactions",
			Help:      "Number of transactions in the memory pool.",
		}, labels).With(labelsAndValues...),
		AncestorRequests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "ancestor_requests",
			Help:      "Number of requests sent for missing ancestor blocks.",
		}, labels).With(labelsAndValues...),
		BackfillLimitHits: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "backfill_limit_hits",
			Help:      "Number of missing ancestors not requested because the backfill depth was exceeded.",
		}, labels).With(labelsAndValues...),
		Broadcasts: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "broadcasts",
			Help:      "Number of advertisements broadcast for newly stored objects.",
		}, withLabel(labels, "kind")).With(labelsAndValues...),
	}
}

func withLabel(labels []string, label string) []string {
	return append(labels[:len(labels):len(labels)], label)
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Messages:           discard.NewCounter(),
		IgnoredMessages:    discard.NewCounter(),
		ProtocolViolations: discard.NewCounter(),
		Blocks:             discard.NewGauge(),
		Transactions:       discard.NewGauge(),
		AncestorRequests:   discard.NewCounter(),
		BackfillLimitHits:  discard.NewCounter(),
		Broadcasts:         discard.NewCounter(),
	}
}
