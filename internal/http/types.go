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

type Server struct {
	Channels       channel.Store
	Lineups        *lineup.Engine
	Rankings       *rankings.Store
	Names          *names.Directory
	Dates          *dateparse.Resolver
	Notifier       notifier.Notifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
