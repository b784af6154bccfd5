package slack

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/names"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

// displayHours maps each start hour to the courts conventionally played at
// that hour, in display order.
var displayHours = []struct {
	Hour   lineup.Hour
	Clock  string
	Courts []lineup.Court
}{
	{7, "🕖", []lineup.Court{2, 6}},
	{8, "🕗", []lineup.Court{1, 4}},
	{9, "🕘", []lineup.Court{3, 5}},
}

// courtLabels is indexed by court number.
var courtLabels = []string{"", "⓵", "⓶", "⓷", "⓸", "⓹", "⓺"}

// formatLineup builds the Block Kit lineup display plus a fallback text.
func (s *Notifier) formatLineup(channelID string, lu *lineup.Lineup, notice string) (string, []slack.Block) {
	text := fmt.Sprintf("Lineup for <#%s> for match on %s", channelID, lu.PlayOnDate)

	displayDate := lu.PlayOnDate
	if date, err := time.Parse("2006-01-02", lu.PlayOnDate); err == nil {
		displayDate = date.Format("January 02")
	}

	header := fmt.Sprintf("*<#%s>* lineup for *%s*", channelID, displayDate)
	if lu.Opponent != "" {
		header += " at "
		if lu.Home {
			header += "home against "
		}
		header += "*" + lu.Opponent + "*"
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", header, false, false), nil, nil),
		slack.NewDividerBlock(),
	}

	for _, hour := range displayHours {
		var fields []*slack.TextBlockObject
		for _, c := range hour.Courts {
			slots := lu.Courts[c]
			if slots.Occupied() == 0 {
				continue
			}
			content := fmt.Sprintf("%s: %s", courtLabels[c], slots[0])
			if slots[1] != "" {
				content += "\n     " + slots[1]
			}
			fields = append(fields, slack.NewTextBlockObject("mrkdwn", content, false, false))
		}
		if len(fields) > 0 {
			label := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("%s *%d:00*", hour.Clock, hour.Hour), false, false)
			blocks = append(blocks, slack.NewSectionBlock(label, fields, nil))
		}
	}

	if notice != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", notice, false, false), nil, nil))
	}

	return text, blocks
}

// FormatRanking renders ranking rows, one line per player: an optional
// home-roster bold marker, the movement glyph, the name as a mention where
// known, and the rating to one decimal place.
func (s *Notifier) FormatRanking(rows []rankings.Row, ids map[string]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		bold := ""
		if row.Home {
			bold = "*"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s, %s%s",
			bold, movementGlyph(row.Movement), names.Mention(row.Name, ids), formatRating(row.Rating), bold))
	}
	return strings.Join(lines, "\n")
}

// FormatTeamList renders the sorted team listing of a division.
func (s *Notifier) FormatTeamList(teams []rankings.TeamListing) string {
	lines := make([]string, 0, len(teams))
	for _, team := range teams {
		lines = append(lines, fmt.Sprintf("%s: %s", team.ID, team.Name))
	}
	return strings.Join(lines, "\n")
}

// FormatAvailabilitySummary renders the per-hour availability buckets plus
// the roster members who have not responded at all.
func (s *Notifier) FormatAvailabilitySummary(lu *lineup.Lineup, roster []string, ids map[string]string) string {
	remaining := map[string]bool{}
	for _, name := range roster {
		if id, ok := ids[name]; ok {
			remaining[id] = true
		}
	}

	rows := []string{fmt.Sprintf("Available for the %s match at %s%s:",
		lu.PlayOnDate, homePrefix(lu.Home), lu.Opponent)}
	for _, h := range lineup.Hours {
		users := lu.Available[h]
		rows = append(rows, fmt.Sprintf("%dPM: %s", h, mentionList(users)))
		for _, user := range users {
			delete(remaining, user)
		}
	}
	rows = append(rows, "No: "+mentionList(lu.No))
	for _, user := range lu.No {
		delete(remaining, user)
	}

	if len(remaining) > 0 {
		users := make([]string, 0, len(remaining))
		for user := range remaining {
			users = append(users, user)
		}
		sort.Strings(users)
		rows = append(rows, "Not responded: "+mentionList(users))
	}
	return strings.Join(rows, "\n")
}

// FormatAvailabilityMark confirms a player's response back to the channel.
func (s *Notifier) FormatAvailabilityMark(mark *lineup.AvailabilityMark) string {
	negation := ""
	if len(mark.Hours) == 0 {
		negation = "*not* "
	}
	msg := fmt.Sprintf("<@%s> is %savailable for the %s match at %s%s",
		mark.UserID, negation, mark.PlayOnDate, homePrefix(mark.Home), mark.Opponent)
	if len(mark.Hours) > 0 {
		hours := make([]string, 0, len(mark.Hours))
		for _, h := range mark.Hours {
			hours = append(hours, strconv.Itoa(int(h)))
		}
		sort.Strings(hours)
		msg += fmt.Sprintf(", able to play at %sPM", strings.Join(hours, "/"))
	}
	return msg
}

// FormatAssignment reports a court's occupants after an assignment attempt.
// The verb encodes the outcome: a pure read, a change, or a request that
// matched no merge rule and left the court alone.
func (s *Notifier) FormatAssignment(res *lineup.CourtAssignment) string {
	var modifier string
	switch res.Outcome {
	case lineup.OutcomeRead:
		modifier = "currently"
	case lineup.OutcomeUpdated:
		modifier = "now"
	default:
		modifier = "already"
	}

	var assigned []string
	for _, name := range res.Occupants {
		if name != "" {
			assigned = append(assigned, name)
		}
	}
	who := "Nobody"
	if len(assigned) > 0 {
		who = strings.Join(assigned, " and ")
	}
	return fmt.Sprintf("%s %s playing on court %d on %s", who, modifier, res.Court, res.PlayOnDate)
}

// FormatScore builds the in-channel result announcement.
func (s *Notifier) FormatScore(occupants lineup.Slots, court lineup.Court, won bool, result string) string {
	who := "We"
	if occupants.Occupied() == 2 {
		who = fmt.Sprintf("%s and %s", occupants[0], occupants[1])
	}
	outcome := "lost"
	if won {
		outcome = "won"
	}
	msg := fmt.Sprintf("%s %s on court %d", who, outcome, court)
	if result != "" {
		msg += ", " + result
	}
	return msg
}

func movementGlyph(m rankings.Movement) string {
	switch m {
	case rankings.MovementUp:
		return "↑"
	case rankings.MovementDown:
		return "↓"
	}
	return "·"
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *rating)
}

func homePrefix(home bool) string {
	if home {
		return "home against "
	}
	return ""
}

func mentionList(users []string) string {
	mentions := make([]string, 0, len(users))
	for _, user := range users {
		mentions = append(mentions, "<@"+user+">")
	}
	return strings.Join(mentions, ", ")
}
