package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRatingSnapshotRefresh EventType = "rating-snapshot-refresh"
)

// RatingSnapshotRefresh is the payload published by the external rating
// scraper. Ratings maps player name to rating; a nil rating marks a roster
// member the league has not rated yet.
type RatingSnapshotRefresh struct {
	League       string              `msgpack:"league"`
	Division     string              `msgpack:"division"`
	Team         string              `msgpack:"team"`
	Flavor       string              `msgpack:"flavor"`
	Ratings      map[string]*float64 `msgpack:"ratings"`
	CapturedAtMs int64               `msgpack:"captured_at_ms"`
}
