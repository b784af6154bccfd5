package lineup

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
)

// CreateAvailability starts an empty availability record for the date. The
// channel must have a team binding and the opponent must exist in the same
// division. Any existing courts data on the date is preserved.
func (e *Engine) CreateAvailability(channelID, date, opponentTeamID string, home bool) (string, error) {
	if date == "" {
		return "", ErrMissingDate
	}

	defn, err := e.channels.TeamDefinition(channelID)
	if err != nil {
		return "", err
	}
	opponent := defn
	opponent.Team = opponentTeamID
	opponentName, err := e.ratings.TeamName(opponent)
	if err != nil {
		return "", err
	}

	_, err = e.docs.Mutate(lineupPath(channelID, date), func(current map[string]any) (map[string]any, error) {
		doc, err := decodeDoc(current)
		if err != nil {
			return nil, err
		}
		if doc.Available != nil {
			return nil, fmt.Errorf("%s: %w", date, ErrAlreadyExists)
		}
		doc.PlayOnDate = date
		doc.Available = make(map[string][]string, len(Hours))
		for _, h := range Hours {
			doc.Available[strconv.Itoa(int(h))] = []string{}
		}
		doc.Opponent = opponentName
		doc.Home = &home
		return encodeDoc(doc)
	})
	if err != nil {
		return "", err
	}
	log.Info("Created availability record", "channel", channelID, "date", date, "opponent", opponentName)
	return opponentName, nil
}

// MarkAvailability toggles the user's hour buckets for the date's match.
// Hours present in the request are added, hours absent are removed. An empty
// request marks the user unavailable via the "no" bucket; any non-empty
// request clears it. Both directions are idempotent.
func (e *Engine) MarkAvailability(channelID, date, userID string, hours []Hour) (*AvailabilityMark, error) {
	lu, err := e.ByDate(channelID, date, true)
	if err != nil {
		return nil, err
	}

	mark := &AvailabilityMark{UserID: userID, Hours: hours}
	_, err = e.docs.Mutate(lu.path, func(current map[string]any) (map[string]any, error) {
		doc, err := decodeDoc(current)
		if err != nil {
			return nil, err
		}
		if doc.Available == nil {
			return nil, fmt.Errorf("%s: %w", lu.PlayOnDate, ErrNoAvailability)
		}

		requested := map[Hour]bool{}
		for _, h := range hours {
			requested[h] = true
		}
		for _, h := range Hours {
			key := strconv.Itoa(int(h))
			if requested[h] {
				doc.Available[key] = addName(doc.Available[key], userID)
			} else {
				doc.Available[key] = removeName(doc.Available[key], userID)
			}
		}
		if len(hours) > 0 {
			doc.Available["no"] = removeName(doc.Available["no"], userID)
		} else {
			doc.Available["no"] = addName(doc.Available["no"], userID)
		}

		mark.PlayOnDate = doc.PlayOnDate
		mark.Opponent = doc.Opponent
		if doc.Home != nil {
			mark.Home = *doc.Home
		}
		return encodeDoc(doc)
	})
	if err != nil {
		return nil, err
	}
	if mark.PlayOnDate == "" {
		mark.PlayOnDate = lu.PlayOnDate
	}
	log.Info("Marked availability", "channel", channelID, "date", mark.PlayOnDate, "user", userID, "hours", hours)
	return mark, nil
}

func addName(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
