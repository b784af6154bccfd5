package notifier

import (
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

// Notifier defines a high-level interface for delivering command responses
// and announcements. This decouples the rest of the application from the
// specific chat provider (e.g., Slack).
type Notifier interface {
	// SendEphemeral posts a plain text response visible only to the user.
	SendEphemeral(channelID, userID, text string, dryRun bool) error
	// SendAnnouncement posts a plain text message to the whole channel.
	SendAnnouncement(channelID, text string, dryRun bool) error
	// SendLineup posts the lineup display, either to the whole channel or
	// only to the requesting user.
	SendLineup(channelID, userID string, lu *lineup.Lineup, notice string, inChannel, dryRun bool) error

	// Formatting for slash command responses.
	FormatRanking(rows []rankings.Row, ids map[string]string) string
	FormatTeamList(teams []rankings.TeamListing) string
	FormatAvailabilitySummary(lu *lineup.Lineup, roster []string, ids map[string]string) string
	FormatAvailabilityMark(mark *lineup.AvailabilityMark) string
	FormatAssignment(res *lineup.CourtAssignment) string
	FormatScore(occupants lineup.Slots, court lineup.Court, won bool, result string) string
}
