package channel

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/travis-scholtens/sladdle/internal/docstore"
)

// ErrNoTeam is returned when a channel has no complete team binding.
var ErrNoTeam = errors.New("no team associated with channel")

// New creates a new channel Store.
func New(docs docstore.Store) Store {
	return &store{
		docs: docs,
	}
}

func channelPath(channelID string) string {
	return "channels/" + channelID
}

// CanWrite reports whether the user may mutate state on the channel.
// A channel with no configuration, or no admins, is open for writes.
func (s *store) CanWrite(channelID, userID string) bool {
	doc, err := s.docs.Get(channelPath(channelID))
	if errors.Is(err, docstore.ErrNotFound) {
		return true
	}
	if err != nil {
		log.Error("Failed to read channel config", "error", err, "channel", channelID)
		return false
	}

	var cfg config
	if err := doc.DataTo(&cfg); err != nil {
		log.Error("Failed to decode channel config", "error", err, "channel", channelID)
		return false
	}
	if len(cfg.Admins) == 0 {
		return true
	}
	for _, admin := range cfg.Admins {
		if admin == userID {
			return true
		}
	}
	return false
}

// AddAdmins adds each parseable mention token to the channel's admin list and
// returns the resulting list. Tokens that are not mentions are skipped, and
// adding an existing admin is a no-op.
func (s *store) AddAdmins(channelID string, tokens []string) ([]string, error) {
	return s.mutateAdmins(channelID, tokens, func(admins []string, id string) []string {
		for _, a := range admins {
			if a == id {
				return admins
			}
		}
		return append(admins, id)
	})
}

// RemoveAdmins removes each parseable mention token from the channel's admin
// list and returns the resulting list. Removing an absent admin is a no-op.
func (s *store) RemoveAdmins(channelID string, tokens []string) ([]string, error) {
	return s.mutateAdmins(channelID, tokens, func(admins []string, id string) []string {
		out := admins[:0]
		for _, a := range admins {
			if a != id {
				out = append(out, a)
			}
		}
		return out
	})
}

func (s *store) mutateAdmins(channelID string, tokens []string, apply func([]string, string) []string) ([]string, error) {
	var result []string
	_, err := s.docs.Mutate(channelPath(channelID), func(current map[string]any) (map[string]any, error) {
		if current == nil {
			current = map[string]any{}
		}
		admins := stringList(current["admins"])
		for _, token := range tokens {
			id := ParseMention(token)
			if id == "" {
				log.Debug("Skipping malformed admin token", "token", token, "channel", channelID)
				continue
			}
			admins = apply(admins, id)
		}
		current["admins"] = admins
		result = admins
		return current, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update admins for %s: %w", channelID, err)
	}
	return result, nil
}

// TeamDefinition resolves the channel's team binding. All three fields must
// be present for the binding to count.
func (s *store) TeamDefinition(channelID string) (TeamDefinition, error) {
	doc, err := s.docs.Get(channelPath(channelID))
	if errors.Is(err, docstore.ErrNotFound) {
		return TeamDefinition{}, ErrNoTeam
	}
	if err != nil {
		return TeamDefinition{}, err
	}

	var cfg config
	if err := doc.DataTo(&cfg); err != nil {
		return TeamDefinition{}, err
	}
	if cfg.League == "" || cfg.Division == "" || cfg.Team == "" {
		return TeamDefinition{}, ErrNoTeam
	}
	return TeamDefinition{League: cfg.League, Division: cfg.Division, Team: cfg.Team}, nil
}

// SetTeam binds the channel to a league team, preserving other config fields.
func (s *store) SetTeam(channelID string, defn TeamDefinition) error {
	return s.docs.Update(channelPath(channelID), map[string]any{
		"league":   defn.League,
		"division": defn.Division,
		"team":     defn.Team,
	})
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
