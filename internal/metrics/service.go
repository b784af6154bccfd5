package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		CommandsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paddle_commands_received_total",
			Help: "The total number of slash commands received, by command.",
		}, []string{"command"}),
		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paddle_command_errors_total",
			Help: "The total number of slash commands that failed, by command.",
		}, []string{"command"}),
		StoreConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paddle_store_conflicts_total",
			Help: "The total number of document mutations lost to a version conflict.",
		}),
		SnapshotRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paddle_rating_snapshot_refreshes_total",
			Help: "The total number of rating snapshot refreshes ingested.",
		}),
		HandlingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paddle_command_handling_duration_seconds",
			Help:    "The duration of individual command handling.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackResponseSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paddle_slack_responses_sent_total",
			Help: "The total number of Slack responses successfully sent.",
		}),
		SlackResponseFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paddle_slack_responses_failed_total",
			Help: "The total number of Slack responses that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "paddle_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.CommandsReceived,
		s.CommandErrors,
		s.StoreConflicts,
		s.SnapshotRefreshes,
		s.HandlingDuration,
		s.SlackResponseSent,
		s.SlackResponseFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCommandsReceived(command string) {
	s.CommandsReceived.WithLabelValues(command).Inc()
}

func (s *Service) IncCommandErrors(command string) {
	s.CommandErrors.WithLabelValues(command).Inc()
}

func (s *Service) IncStoreConflicts() {
	s.StoreConflicts.Inc()
}

func (s *Service) IncSnapshotRefreshes() {
	s.SnapshotRefreshes.Inc()
}

func (s *Service) ObserveHandlingDuration(duration float64) {
	s.HandlingDuration.Observe(duration)
}

func (s *Service) IncSlackResponseSent() {
	s.SlackResponseSent.Inc()
}

func (s *Service) IncSlackResponseFailed() {
	s.SlackResponseFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
