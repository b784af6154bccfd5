package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	CommandsReceived    *prometheus.CounterVec
	CommandErrors       *prometheus.CounterVec
	StoreConflicts      prometheus.Counter
	SnapshotRefreshes   prometheus.Counter
	HandlingDuration    prometheus.Histogram
	SlackResponseSent   prometheus.Counter
	SlackResponseFailed prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}
