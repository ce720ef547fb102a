package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "promptserver"

	metricLabelRoute  = "route"
	metricLabelStatus = "status"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// ServiceRequestCounter count the number of requests for each route
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each route",
		metricLabelRoute, metricLabelStatus,
	)
	// ServiceRequestDuration observe the duration of requests for each route
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to unmarshal a request, execute it and marshal its response",
		metricLabelRoute, metricLabelStatus,
	)
	// SnapshotLoadFailedCounter count the number of snapshot reads that failed
	SnapshotLoadFailedCounter = newCounterVec(
		"snapshot_load_failed_count",
		"Number of snapshot list/read/parse failures",
	)
	// SnapshotPublishCounter count the number of snapshots written
	SnapshotPublishCounter = newCounterVec(
		"snapshot_publish_count",
		"Number of snapshots successfully published",
	)
	// SnapshotPublishFailedCounter count the number of publishes that failed
	SnapshotPublishFailedCounter = newCounterVec(
		"snapshot_publish_failed_count",
		"Number of publishes that failed to persist",
	)
	// CacheHitCounter count document reads served from the cache
	CacheHitCounter = newCounterVec(
		"document_cache_hit_count",
		"Number of document reads served from the cache",
	)
	// CacheMissCounter count document reads that went to the backend
	CacheMissCounter = newCounterVec(
		"document_cache_miss_count",
		"Number of document reads that had to hit the backend",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
