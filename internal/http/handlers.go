package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/pubsub"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// EventHandler answers the Slack Events API. URL verification echoes the
// challenge; anything else is logged and acked.
func (s *Server) EventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			log.Error("Failed to unmarshal event payload", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if challenge, ok := payload["challenge"].(string); ok {
			w.Write([]byte(challenge))
			return
		}

		log.Info("Received event callback", "type", payload["type"])
		w.WriteHeader(http.StatusOK)
	}
}

// RatingRefreshHandler ingests pushed rating snapshots. The scraper
// publishes a msgpack RatingSnapshotRefresh; Pub/Sub delivers it wrapped in
// a JSON envelope with the payload base64-encoded.
func (s *Server) RatingRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received rating refresh message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		refresh := pubsub.RatingSnapshotRefresh{}
		if err := s.pubsub.ProcessMessage(rawData, &refresh); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		flavor, ok := rankings.ParseFlavor(refresh.Flavor)
		if !ok {
			log.Error("Rejected rating refresh with unknown flavor", "flavor", refresh.Flavor)
			http.Error(w, "Unknown rating flavor", http.StatusBadRequest)
			return
		}

		defn := channel.TeamDefinition{
			League:   refresh.League,
			Division: refresh.Division,
			Team:     refresh.Team,
		}
		if err := s.Rankings.ApplyRefresh(defn, flavor, refresh.Ratings, refresh.CapturedAtMs); err != nil {
			log.Error("Failed to apply rating refresh", "error", err, "team", refresh.Team)
			http.Error(w, "Failed to apply refresh", http.StatusInternalServerError)
			return
		}

		s.Metrics.IncSnapshotRefreshes()
		log.Info("Applied rating refresh", "team", refresh.Team, "flavor", refresh.Flavor, "players", len(refresh.Ratings))
		w.Write([]byte("OK"))
	}
}
