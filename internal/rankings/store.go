package rankings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/docstore"
)

// ErrNoRatings is returned when a team has no rating snapshot document.
var ErrNoRatings = errors.New("no ratings for team")

// New creates a new rankings Store.
func New(docs docstore.Store) *Store {
	return &Store{
		docs: docs,
		Now:  time.Now,
	}
}

// TeamPath returns the document path for a team's rating snapshot.
func TeamPath(defn channel.TeamDefinition) string {
	return fmt.Sprintf("rankings/%s/divisions/%s/teams/%s", defn.League, defn.Division, defn.Team)
}

// TeamsCollection returns the collection path holding a division's teams.
func TeamsCollection(league, division string) string {
	return fmt.Sprintf("rankings/%s/divisions/%s/teams", league, division)
}

// Snapshot loads the current rating list for the team, plus the previous
// list when it was captured within the freshness window. A stale or missing
// previous list comes back empty, which disables movement computation.
func (s *Store) Snapshot(defn channel.TeamDefinition, flavor Flavor) (current, previous []Entry, err error) {
	doc, err := s.docs.Get(TeamPath(defn))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", defn.Team, ErrNoRatings)
	}
	if err != nil {
		return nil, nil, err
	}

	var team teamDoc
	if err := doc.DataTo(&team); err != nil {
		return nil, nil, err
	}

	var ratings, prevRatings map[string]*float64
	var prevTime int64
	switch flavor {
	case FlavorDivTSkill:
		ratings, prevRatings, prevTime = team.DivTSkill, team.PreviousDivTSkill, team.PreviousDivTSkillTime
	default:
		ratings, prevRatings, prevTime = team.PTI, team.PreviousPTI, team.PreviousPTITime
	}
	if len(ratings) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", defn.Team, ErrNoRatings)
	}

	current = toEntries(ratings)
	if prevTime > 0 && s.Now().Sub(time.UnixMilli(prevTime)) < FreshnessWindow {
		previous = toEntries(prevRatings)
	}
	return current, previous, nil
}

// Roster returns the display names on the team's primary rating list,
// ranked or not. Used by the availability chase view.
func (s *Store) Roster(defn channel.TeamDefinition) ([]string, error) {
	doc, err := s.docs.Get(TeamPath(defn))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", defn.Team, ErrNoRatings)
	}
	if err != nil {
		return nil, err
	}

	var team teamDoc
	if err := doc.DataTo(&team); err != nil {
		return nil, err
	}
	roster := make([]string, 0, len(team.PTI))
	for name := range team.PTI {
		roster = append(roster, name)
	}
	sort.Strings(roster)
	return roster, nil
}

// TeamName resolves a team ID in the division to its display name.
func (s *Store) TeamName(defn channel.TeamDefinition) (string, error) {
	doc, err := s.docs.Get(TeamPath(defn))
	if errors.Is(err, docstore.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", defn.Team, ErrNoRatings)
	}
	if err != nil {
		return "", err
	}

	var team teamDoc
	if err := doc.DataTo(&team); err != nil {
		return "", err
	}
	return team.Name, nil
}

// ListTeams returns all teams in the division, sorted by ID.
func (s *Store) ListTeams(league, division string) ([]TeamListing, error) {
	docs, err := s.docs.Query(TeamsCollection(league, division)).Docs()
	if err != nil {
		return nil, err
	}

	teams := make([]TeamListing, 0, len(docs))
	for _, doc := range docs {
		var team teamDoc
		if err := doc.DataTo(&team); err != nil {
			return nil, err
		}
		teams = append(teams, TeamListing{ID: doc.ID, Name: team.Name})
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

// ApplyRefresh stores a freshly scraped rating list for one flavor,
// rotating the team's current list into the previous slot stamped with the
// capture time. The other flavor's lists are untouched.
func (s *Store) ApplyRefresh(defn channel.TeamDefinition, flavor Flavor, ratings map[string]*float64, capturedAtMs int64) error {
	key := string(flavor)
	_, err := s.docs.Mutate(TeamPath(defn), func(current map[string]any) (map[string]any, error) {
		if current == nil {
			current = map[string]any{}
		}
		if prev, ok := current[key]; ok {
			current["previous_"+key] = prev
			current["previous_"+key+"_time"] = capturedAtMs
		}
		next := make(map[string]any, len(ratings))
		for name, rating := range ratings {
			if rating != nil {
				next[name] = *rating
			} else {
				next[name] = nil
			}
		}
		current[key] = next
		return current, nil
	})
	return err
}

func toEntries(ratings map[string]*float64) []Entry {
	entries := make([]Entry, 0, len(ratings))
	for name, rating := range ratings {
		entries = append(entries, Entry{Name: name, Rating: rating})
	}
	return entries
}
