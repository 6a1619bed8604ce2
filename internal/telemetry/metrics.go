/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "slotguide"

var (
	// ChannelOutcomesTotal counts scheduled channels by outcome.
	ChannelOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "channel_outcomes_total",
		Help:      "Channels scheduled, by outcome.",
	}, []string{"outcome"})

	// ValidatorFindingsTotal counts validator findings by kind.
	ValidatorFindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validator_findings_total",
		Help:      "Schedule validator findings, by kind.",
	}, []string{"kind"})

	// GuideRunDuration observes end to end guide generation time.
	GuideRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "guide_run_duration_seconds",
		Help:      "Time spent generating a guide.",
		Buckets:   prometheus.DefBuckets,
	})

	// GuideLastSuccess is the unix time of the last successful generation.
	GuideLastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "guide_last_success_timestamp_seconds",
		Help:      "Unix time of the last successful guide generation.",
	})

	// PlaylistEntries reports the entry counts of the last ingested playlist.
	PlaylistEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "playlist_entries",
		Help:      "Entries in the last ingested playlist, by stage.",
	}, []string{"stage"})

	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "database_query_duration_seconds",
		Help:      "Audit database operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "database_errors_total",
		Help:      "Failed audit database operations.",
	}, []string{"operation"})

	CacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_operations_total",
		Help:      "Guide cache lookups, by result.",
	}, []string{"result"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_active_connections",
		Help:      "In-flight HTTP requests.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
