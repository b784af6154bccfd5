package http

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/dateparse"
	"github.com/travis-scholtens/sladdle/internal/docstore"
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

// command wraps a slash command handler with form parsing, metrics, and
// timing. The wrapped function responds through the notifier; a returned
// error means an unexpected fault and becomes a generic 500.
func (s *Server) command(name string, fn func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.Metrics.IncCommandsReceived(name)

		if err := r.ParseForm(); err != nil {
			s.Metrics.IncCommandErrors(name)
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if err := fn(r); err != nil {
			s.Metrics.IncCommandErrors(name)
			if errors.Is(err, docstore.ErrConflict) {
				s.Metrics.IncStoreConflicts()
			}
			log.Error("Command failed", "command", name, "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		s.Metrics.ObserveHandlingDuration(time.Since(start).Seconds())
		w.WriteHeader(http.StatusOK)
	}
}

// popDate consumes a leading token when it parses as a date.
func (s *Server) popDate(tokens []string) (string, []string) {
	if len(tokens) == 0 {
		return "", tokens
	}
	if d, ok := s.Dates.Parse(tokens[0]); ok {
		return dateparse.Format(d), tokens[1:]
	}
	return "", tokens
}

func cantDoThat(userID string) string {
	return fmt.Sprintf("<@%s> can't do that", userID)
}

func noMatchMessage(date string) string {
	if date != "" {
		return "No match on " + date
	}
	return "No match upcoming"
}

// RankingCommandHandler serves /pti and /rank, which differ only in rating
// flavor and sort direction.
func (s *Server) RankingCommandHandler(name string, flavor rankings.Flavor) http.HandlerFunc {
	return s.command(name, func(r *http.Request) error {
		channelID := r.FormValue("channel_id")
		userID := r.FormValue("user_id")
		dryRun := isDryRunFromContext(r)
		parts := strings.Fields(r.FormValue("text"))

		defn, err := s.Channels.TeamDefinition(channelID)
		if errors.Is(err, channel.ErrNoTeam) {
			return s.Notifier.SendEphemeral(channelID, userID,
				fmt.Sprintf("No team associated with <#%s>", channelID), dryRun)
		}
		if err != nil {
			return err
		}

		// A trailing "vs X" selects an opponent for a head-to-head view.
		other := ""
		if len(parts) > 1 && parts[len(parts)-2] == "vs" {
			other = parts[len(parts)-1]
			parts = parts[:len(parts)-2]
		}
		// One remaining token overrides the team, two override division
		// then team.
		division, team := defn.Division, defn.Team
		if len(parts) > 0 {
			division = parts[0]
			team = parts[len(parts)-1]
			if team == division {
				division = defn.Division
			}
		}

		text, err := s.ranking(channel.TeamDefinition{League: defn.League, Division: division, Team: team}, other, flavor)
		if err != nil {
			return err
		}
		return s.Notifier.SendEphemeral(channelID, userID, text, dryRun)
	})
}

func (s *Server) ranking(defn channel.TeamDefinition, otherTeam string, flavor rankings.Flavor) (string, error) {
	if defn.Team == "teams" {
		teams, err := s.Rankings.ListTeams(defn.League, defn.Division)
		if err != nil {
			return "", err
		}
		return s.Notifier.FormatTeamList(teams), nil
	}

	current, previous, err := s.Rankings.Snapshot(defn, flavor)
	if errors.Is(err, rankings.ErrNoRatings) {
		return fmt.Sprintf("Couldn't find ratings for %s", defn.Team), nil
	}
	if err != nil {
		return "", err
	}

	var rows []rankings.Row
	if otherTeam != "" {
		away := defn
		away.Team = otherTeam
		awayCurrent, _, err := s.Rankings.Snapshot(away, flavor)
		if errors.Is(err, rankings.ErrNoRatings) {
			return fmt.Sprintf("Couldn't find ratings for %s", otherTeam), nil
		}
		if err != nil {
			return "", err
		}
		rows = rankings.RankHeadToHead(current, awayCurrent, flavor.Reverse())
	} else {
		rows = rankings.Rank(current, previous, flavor.Reverse())
	}

	ids, err := s.Names.IDs()
	if err != nil {
		return "", err
	}
	return s.Notifier.FormatRanking(rows, ids), nil
}

// LineupCommandHandler serves /lineup. The first token is tried as a date;
// the next selects a keyword subcommand or a court number.
func (s *Server) LineupCommandHandler() http.HandlerFunc {
	return s.command("lineup", func(r *http.Request) error {
		channelID := r.FormValue("channel_id")
		userID := r.FormValue("user_id")
		dryRun := isDryRunFromContext(r)

		date, cmds := s.popDate(strings.Fields(r.FormValue("text")))

		if len(cmds) == 0 {
			return s.showLineup(channelID, userID, date, false, dryRun)
		}

		switch {
		case len(cmds) == 1 && cmds[0] == "new":
			return s.createLineup(channelID, userID, date, dryRun)
		case len(cmds) == 1 && cmds[0] == "delete":
			return s.deleteLineup(channelID, userID, date, dryRun)
		case len(cmds) == 1 && cmds[0] == "view":
			return s.showLineup(channelID, userID, date, true, dryRun)
		case date == "" && cmds[0] == "admin":
			return s.mutateAdmins(channelID, userID, cmds[1:], s.Channels.AddAdmins, dryRun)
		case date == "" && cmds[0] == "unadmin":
			return s.mutateAdmins(channelID, userID, cmds[1:], s.Channels.RemoveAdmins, dryRun)
		}

		court, err := lineup.ParseCourt(cmds[0])
		if err != nil {
			return s.Notifier.SendEphemeral(channelID, userID, "Expected a court number (1-6)", dryRun)
		}
		return s.assignCourt(channelID, userID, date, court, cmds[1:], dryRun)
	})
}

func (s *Server) showLineup(channelID, userID, date string, inChannel, dryRun bool) error {
	lu, err := s.Lineups.ByDate(channelID, date, false)
	if errors.Is(err, lineup.ErrNotFound) {
		msg := "There are no upcoming match lineups"
		if date != "" {
			msg = fmt.Sprintf("There is no lineup for a match on %s", date)
		}
		return s.Notifier.SendEphemeral(channelID, userID, msg, dryRun)
	}
	if err != nil {
		return err
	}
	if !lu.HasCourts() {
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("There is no lineup for a match on %s", lu.PlayOnDate), dryRun)
	}

	// An all-empty lineup has nothing worth posting to the channel; answer
	// with the status view instead.
	if inChannel && lu.Empty() {
		inChannel = false
	}

	// The bare status view carries a needs-players notice; the explicit
	// in-channel view posts the lineup as-is.
	var notice string
	if !inChannel {
		if notFull := lu.NotFull(); len(notFull) > 0 {
			courts := make([]string, 0, len(notFull))
			for _, c := range notFull {
				courts = append(courts, strconv.Itoa(int(c)))
			}
			notice = fmt.Sprintf("The match for <#%s>, to be played on %s, still needs players on: %s",
				channelID, lu.PlayOnDate, strings.Join(courts, ", "))
		}
	}
	return s.Notifier.SendLineup(channelID, userID, lu, notice, inChannel, dryRun)
}

func (s *Server) createLineup(channelID, userID, date string, dryRun bool) error {
	err := s.Lineups.Create(channelID, userID, date)
	switch {
	case errors.Is(err, lineup.ErrPermissionDenied):
		return s.Notifier.SendEphemeral(channelID, userID, cantDoThat(userID), dryRun)
	case errors.Is(err, lineup.ErrMissingDate):
		return s.Notifier.SendEphemeral(channelID, userID, "Missing date", dryRun)
	case errors.Is(err, lineup.ErrAlreadyExists):
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("A lineup for <#%s> on %s already exists", channelID, date), dryRun)
	case err != nil:
		return err
	}
	return s.Notifier.SendEphemeral(channelID, userID,
		fmt.Sprintf("Started a new empty lineup for <#%s> on %s", channelID, date), dryRun)
}

func (s *Server) deleteLineup(channelID, userID, date string, dryRun bool) error {
	err := s.Lineups.Delete(channelID, userID, date)
	switch {
	case errors.Is(err, lineup.ErrPermissionDenied):
		return s.Notifier.SendEphemeral(channelID, userID, cantDoThat(userID), dryRun)
	case errors.Is(err, lineup.ErrMissingDate):
		return s.Notifier.SendEphemeral(channelID, userID, "Missing date", dryRun)
	case errors.Is(err, lineup.ErrNotFound):
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("There is no lineup for a match on %s", date), dryRun)
	case err != nil:
		return err
	}
	return s.Notifier.SendEphemeral(channelID, userID,
		fmt.Sprintf("Removed lineup for <#%s> on %s", channelID, date), dryRun)
}

func (s *Server) mutateAdmins(channelID, userID string, tokens []string, mutate func(string, []string) ([]string, error), dryRun bool) error {
	if !s.Channels.CanWrite(channelID, userID) {
		return s.Notifier.SendEphemeral(channelID, userID, cantDoThat(userID), dryRun)
	}
	admins, err := mutate(channelID, tokens)
	if err != nil {
		return err
	}
	text := "No admins"
	if len(admins) > 0 {
		mentions := make([]string, 0, len(admins))
		for _, admin := range admins {
			mentions = append(mentions, "<@"+admin+">")
		}
		text = strings.Join(mentions, ", ")
	}
	return s.Notifier.SendEphemeral(channelID, userID, text, dryRun)
}

func (s *Server) assignCourt(channelID, userID, date string, court lineup.Court, playerNames []string, dryRun bool) error {
	res, err := s.Lineups.AssignCourt(channelID, userID, date, court, playerNames)
	switch {
	case errors.Is(err, lineup.ErrNotFound):
		return s.Notifier.SendEphemeral(channelID, userID, "There are no upcoming match lineups", dryRun)
	case errors.Is(err, lineup.ErrPermissionDenied):
		return s.Notifier.SendEphemeral(channelID, userID, cantDoThat(userID), dryRun)
	case err != nil:
		return err
	}
	return s.Notifier.SendEphemeral(channelID, userID, s.Notifier.FormatAssignment(res), dryRun)
}

var scorePattern = regexp.MustCompile(`^([1-6]) ([WwLl])(?: ([-0-7 ]*))?`)

// ScoreCommandHandler serves /score, announcing a court result in-channel.
func (s *Server) ScoreCommandHandler() http.HandlerFunc {
	return s.command("score", func(r *http.Request) error {
		channelID := r.FormValue("channel_id")
		userID := r.FormValue("user_id")
		dryRun := isDryRunFromContext(r)

		date, cmds := s.popDate(strings.Fields(r.FormValue("text")))

		if !s.Channels.CanWrite(channelID, userID) {
			return s.Notifier.SendEphemeral(channelID, userID, cantDoThat(userID), dryRun)
		}

		// Results often arrive the morning after, so the date window
		// includes yesterday's match.
		lu, err := s.Lineups.ByDate(channelID, date, true)
		if errors.Is(err, lineup.ErrNotFound) {
			return s.Notifier.SendEphemeral(channelID, userID, noMatchMessage(date), dryRun)
		}
		if err != nil {
			return err
		}

		m := scorePattern.FindStringSubmatch(strings.Join(cmds, " "))
		if m == nil {
			return s.Notifier.SendEphemeral(channelID, userID, "Expected: /score (1-6) (W|L) [set results]", dryRun)
		}
		court, err := lineup.ParseCourt(m[1])
		if err != nil {
			return err
		}

		won := m[2] == "W" || m[2] == "w"
		text := s.Notifier.FormatScore(lu.Courts[court], court, won, m[3])
		return s.Notifier.SendAnnouncement(channelID, text, dryRun)
	})
}

// AvailableCommandHandler serves /available. Leading tokens are tried as a
// target user mention then a date; what remains selects the action, with
// hour digits as the default.
func (s *Server) AvailableCommandHandler() http.HandlerFunc {
	return s.command("available", func(r *http.Request) error {
		channelID := r.FormValue("channel_id")
		userID := r.FormValue("user_id")
		dryRun := isDryRunFromContext(r)

		cmds := strings.Fields(r.FormValue("text"))

		targetUser := userID
		if len(cmds) > 0 {
			if id := channel.ParseMention(cmds[0]); id != "" {
				targetUser = id
				cmds = cmds[1:]
			}
		}

		date, cmds := s.popDate(cmds)

		if len(cmds) == 0 {
			cmds = []string{"789"}
		}

		switch {
		case cmds[0] == "who":
			return s.showAvailability(channelID, userID, date, dryRun)
		case cmds[0] == "no":
			if targetUser != userID && !s.Channels.CanWrite(channelID, userID) {
				return s.Notifier.SendEphemeral(channelID, userID, cantDoThat(userID), dryRun)
			}
			return s.markAvailability(channelID, userID, date, targetUser, nil, dryRun)
		case cmds[0] == "vs" || cmds[0] == "@":
			if !s.Channels.CanWrite(channelID, userID) {
				return s.Notifier.SendEphemeral(channelID, userID, cantDoThat(userID), dryRun)
			}
			return s.createAvailability(channelID, userID, date, cmds, dryRun)
		}
		return s.markAvailability(channelID, userID, date, targetUser, lineup.ParseHours(cmds), dryRun)
	})
}

func (s *Server) showAvailability(channelID, userID, date string, dryRun bool) error {
	lu, err := s.Lineups.ByDate(channelID, date, false)
	if errors.Is(err, lineup.ErrNotFound) {
		return s.Notifier.SendEphemeral(channelID, userID, noMatchMessage(date), dryRun)
	}
	if err != nil {
		return err
	}
	if !lu.HasAvailability() {
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("No availability record for %s", lu.PlayOnDate), dryRun)
	}

	defn, err := s.Channels.TeamDefinition(channelID)
	if errors.Is(err, channel.ErrNoTeam) {
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("No team associated with <#%s>", channelID), dryRun)
	}
	if err != nil {
		return err
	}
	roster, err := s.Rankings.Roster(defn)
	if errors.Is(err, rankings.ErrNoRatings) {
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("No roster for %s", defn.Team), dryRun)
	}
	if err != nil {
		return err
	}
	ids, err := s.Names.IDs()
	if err != nil {
		return err
	}
	return s.Notifier.SendEphemeral(channelID, userID, s.Notifier.FormatAvailabilitySummary(lu, roster, ids), dryRun)
}

func (s *Server) markAvailability(channelID, userID, date, targetUser string, hours []lineup.Hour, dryRun bool) error {
	mark, err := s.Lineups.MarkAvailability(channelID, date, targetUser, hours)
	switch {
	case errors.Is(err, lineup.ErrNotFound):
		return s.Notifier.SendEphemeral(channelID, userID, noMatchMessage(date), dryRun)
	case errors.Is(err, lineup.ErrNoAvailability):
		msg := noMatchMessage(date)
		if lu, lerr := s.Lineups.ByDate(channelID, date, true); lerr == nil {
			msg = fmt.Sprintf("No availability record for %s", lu.PlayOnDate)
		}
		return s.Notifier.SendEphemeral(channelID, userID, msg, dryRun)
	case err != nil:
		return err
	}
	return s.Notifier.SendEphemeral(channelID, userID, s.Notifier.FormatAvailabilityMark(mark), dryRun)
}

func (s *Server) createAvailability(channelID, userID, date string, cmds []string, dryRun bool) error {
	if date == "" || len(cmds) != 2 {
		return s.Notifier.SendEphemeral(channelID, userID, "Need date and opponent", dryRun)
	}
	home := cmds[0] == "vs"
	_, err := s.Lineups.CreateAvailability(channelID, date, cmds[1], home)
	switch {
	case errors.Is(err, channel.ErrNoTeam):
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("No team associated with <#%s>", channelID), dryRun)
	case errors.Is(err, rankings.ErrNoRatings):
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("No team %q", cmds[1]), dryRun)
	case errors.Is(err, lineup.ErrAlreadyExists):
		return s.Notifier.SendEphemeral(channelID, userID,
			fmt.Sprintf("Availability for <#%s> on %s already exists", channelID, date), dryRun)
	case err != nil:
		return err
	}
	return s.Notifier.SendEphemeral(channelID, userID,
		fmt.Sprintf("Created availability record for %s", date), dryRun)
}
