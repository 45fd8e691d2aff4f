// Package metrics registers the Prometheus instruments exposed by the indexer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lastmonad"

var (
	// EventsApplied counts events whose aggregates were applied, by type.
	EventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "events_applied_total",
		Help:      "Number of decoded events applied to the aggregates",
	}, []string{"type"})

	// EventsDuplicate counts replayed events skipped by position dedup.
	EventsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "events_duplicate_total",
		Help:      "Number of events skipped because their position was already recorded",
	})

	// EventsDropped counts logs that did not decode to a known event.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "events_dropped_total",
		Help:      "Number of logs dropped because they did not match a known event",
	})

	// ApplyDuration observes the time spent applying one event transaction.
	ApplyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "apply_duration_seconds",
		Help:      "Duration of a single event apply transaction",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	// LastAppliedBlock tracks the highest block fully applied.
	LastAppliedBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "last_applied_block",
		Help:      "Highest block number whose events have been applied",
	})

	// SourcePollErrors counts failed poll iterations against the RPC node.
	SourcePollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "source",
		Name:      "poll_errors_total",
		Help:      "Number of failed log poll iterations",
	})

	// RPCRequests counts outbound RPC calls by method.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "Number of outbound RPC requests",
	}, []string{"method"})

	// RPCErrors counts failed outbound RPC calls by method.
	RPCErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "request_errors_total",
		Help:      "Number of failed outbound RPC requests",
	}, []string{"method"})

	// APIRequests counts served API requests by route and status code.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Number of served API requests",
	}, []string{"route", "code"})
)
