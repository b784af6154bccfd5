package notifier

import (
	"sync"

	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	EphemeralCalls []struct {
		ChannelID string
		UserID    string
		Text      string
	}
	AnnouncementCalls []struct {
		ChannelID string
		Text      string
	}
	LineupCalls []struct {
		ChannelID string
		UserID    string
		Lineup    *lineup.Lineup
		Notice    string
		InChannel bool
	}

	// Optional error injection
	SendErr error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EphemeralCalls = nil
	m.AnnouncementCalls = nil
	m.LineupCalls = nil
}

func (m *Mock) SendEphemeral(channelID, userID, text string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EphemeralCalls = append(m.EphemeralCalls, struct {
		ChannelID string
		UserID    string
		Text      string
	}{channelID, userID, text})
	return m.SendErr
}

func (m *Mock) SendAnnouncement(channelID, text string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnnouncementCalls = append(m.AnnouncementCalls, struct {
		ChannelID string
		Text      string
	}{channelID, text})
	return m.SendErr
}

func (m *Mock) SendLineup(channelID, userID string, lu *lineup.Lineup, notice string, inChannel, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LineupCalls = append(m.LineupCalls, struct {
		ChannelID string
		UserID    string
		Lineup    *lineup.Lineup
		Notice    string
		InChannel bool
	}{channelID, userID, lu, notice, inChannel})
	return m.SendErr
}

func (m *Mock) FormatRanking(rows []rankings.Row, ids map[string]string) string {
	out := ""
	for _, row := range rows {
		out += row.Name + "\n"
	}
	return out
}

func (m *Mock) FormatTeamList(teams []rankings.TeamListing) string {
	out := ""
	for _, team := range teams {
		out += team.ID + "\n"
	}
	return out
}

func (m *Mock) FormatAvailabilitySummary(lu *lineup.Lineup, roster []string, ids map[string]string) string {
	return "availability for " + lu.PlayOnDate
}

func (m *Mock) FormatAvailabilityMark(mark *lineup.AvailabilityMark) string {
	return "marked " + mark.UserID
}

func (m *Mock) FormatAssignment(res *lineup.CourtAssignment) string {
	return "assigned"
}

func (m *Mock) FormatScore(occupants lineup.Slots, court lineup.Court, won bool, result string) string {
	return "score"
}

// LastEphemeralText returns the text of the most recent ephemeral send, or "".
func (m *Mock) LastEphemeralText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.EphemeralCalls) == 0 {
		return ""
	}
	return m.EphemeralCalls[len(m.EphemeralCalls)-1].Text
}
