package http

import (
	"net/http"

	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/config"
	"github.com/travis-scholtens/sladdle/internal/dateparse"
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/metrics"
	"github.com/travis-scholtens/sladdle/internal/names"
	"github.com/travis-scholtens/sladdle/internal/notifier"
	"github.com/travis-scholtens/sladdle/internal/pubsub"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

func NewServer(channels channel.Store, lineups *lineup.Engine, rankingsStore *rankings.Store, namesDir *names.Directory, dates *dateparse.Resolver, notifier notifier.Notifier, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Channels:       channels,
		Lineups:        lineups,
		Rankings:       rankingsStore,
		Names:          namesDir,
		Dates:          dates,
		Notifier:       notifier,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slash commands and event callbacks additionally verify the Slack
	// request signature.
	slackAuth := slackAuthMiddleware(s.Cfg.Slack.SigningSecret)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/pti", Chain(s.RankingCommandHandler("pti", rankings.FlavorPTI), paramsMiddleware, slackAuth))
	s.Router.Handle("/rank", Chain(s.RankingCommandHandler("rank", rankings.FlavorDivTSkill), paramsMiddleware, slackAuth))
	s.Router.Handle("/lineup", Chain(s.LineupCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/score", Chain(s.ScoreCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/available", Chain(s.AvailableCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/event", Chain(s.EventHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/pubsub/ratings", Chain(s.RatingRefreshHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
