package lineup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/dateparse"
	"github.com/travis-scholtens/sladdle/internal/docstore"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

// New creates a new lineup Engine.
func New(docs docstore.Store, channels channel.Store, ratings *rankings.Store) *Engine {
	return &Engine{
		docs:     docs,
		channels: channels,
		ratings:  ratings,
		Now:      time.Now,
	}
}

func lineupsCollection(channelID string) string {
	return "channels/" + channelID + "/lineups"
}

func lineupPath(channelID, date string) string {
	return lineupsCollection(channelID) + "/" + date
}

// Create starts a new empty lineup for the date: 6 courts, 2 open slots
// each. Any existing availability data on the date is preserved.
func (e *Engine) Create(channelID, userID, date string) error {
	if !e.channels.CanWrite(channelID, userID) {
		return ErrPermissionDenied
	}
	if date == "" {
		return ErrMissingDate
	}

	_, err := e.docs.Mutate(lineupPath(channelID, date), func(current map[string]any) (map[string]any, error) {
		doc, err := decodeDoc(current)
		if err != nil {
			return nil, err
		}
		if doc.Courts != nil {
			return nil, fmt.Errorf("%s: %w", date, ErrAlreadyExists)
		}
		doc.PlayOnDate = date
		doc.Courts = make(map[string][]*string, NumCourts)
		for _, c := range Courts() {
			doc.Courts[strconv.Itoa(int(c))] = []*string{nil, nil}
		}
		return encodeDoc(doc)
	})
	if err != nil {
		return err
	}
	log.Info("Created lineup", "channel", channelID, "date", date)
	return nil
}

// Delete removes the whole date record, regardless of which sub-features
// are populated.
func (e *Engine) Delete(channelID, userID, date string) error {
	if !e.channels.CanWrite(channelID, userID) {
		return ErrPermissionDenied
	}
	if date == "" {
		return ErrMissingDate
	}

	lu, err := e.ByDate(channelID, date, false)
	if err != nil {
		return err
	}
	if err := e.docs.Delete(lu.path); err != nil {
		return err
	}
	log.Info("Deleted lineup", "channel", channelID, "date", date)
	return nil
}

// ByDate resolves the lineup for a date, or the soonest upcoming one when no
// date is given. Dated lookups match a stored play_on_date field first, then
// fall back to the date as the document key; both paths must resolve to the
// same document for the same date. includeYesterday widens the upcoming
// search window for same-day-after-the-fact marking.
func (e *Engine) ByDate(channelID, date string, includeYesterday bool) (*Lineup, error) {
	coll := lineupsCollection(channelID)

	if date != "" {
		docs, err := e.docs.Query(coll).Where("play_on_date", "==", date).Docs()
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			return e.toLineup(channelID, docs[0])
		}
		doc, err := e.docs.Get(lineupPath(channelID, date))
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", date, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		return e.toLineup(channelID, doc)
	}

	firstDay := e.today()
	if includeYesterday {
		firstDay = firstDay.AddDate(0, 0, -1)
	}
	docs, err := e.docs.Query(coll).
		Where("play_on_date", ">=", dateparse.Format(firstDay)).
		OrderBy("play_on_date").
		Limit(1).
		Docs()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return e.toLineup(channelID, docs[0])
}

// AssignCourt reads or mutates one court's slot pair. With no names it is a
// read and needs no write access. Otherwise the slot-merge policy applies:
// fill empty slots (later-supplied names land in lower slot indices first),
// overwrite a full pair with a new pair, toggle off a single matching name,
// or soft-reject as unchanged.
func (e *Engine) AssignCourt(channelID, userID, date string, court Court, playerNames []string) (*CourtAssignment, error) {
	lu, err := e.ByDate(channelID, date, false)
	if err != nil {
		return nil, err
	}
	if !lu.HasCourts() {
		return nil, fmt.Errorf("%s: %w", lu.PlayOnDate, ErrNotFound)
	}

	if len(playerNames) == 0 {
		return &CourtAssignment{
			Court:      court,
			Occupants:  lu.Courts[court],
			PlayOnDate: lu.PlayOnDate,
			Outcome:    OutcomeRead,
		}, nil
	}

	if !e.channels.CanWrite(channelID, userID) {
		return nil, ErrPermissionDenied
	}

	result := &CourtAssignment{Court: court, PlayOnDate: lu.PlayOnDate}
	_, err = e.docs.Mutate(lu.path, func(current map[string]any) (map[string]any, error) {
		doc, err := decodeDoc(current)
		if err != nil {
			return nil, err
		}
		key := strconv.Itoa(int(court))
		slots, outcome := applyAssignment(toSlots(doc.Courts[key]), playerNames)
		result.Occupants = slots
		result.Outcome = outcome
		if outcome != OutcomeUpdated {
			// Soft rejection: report the unchanged occupants, write nothing.
			return nil, errUnchanged
		}
		doc.Courts[key] = fromSlots(slots)
		return encodeDoc(doc)
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return nil, err
	}
	if result.Outcome == OutcomeUpdated {
		log.Info("Assigned court", "channel", channelID, "date", result.PlayOnDate, "court", court)
	}
	return result, nil
}

// errUnchanged aborts a Mutate without treating the abort as a failure.
var errUnchanged = errors.New("unchanged")

// applyAssignment implements the slot-merge policy for one court.
func applyAssignment(current Slots, names []string) (Slots, AssignOutcome) {
	emptySlots := len(current) - current.Occupied()
	switch {
	case len(names) <= emptySlots:
		rest := names
		for i := range current {
			if len(rest) == 0 {
				break
			}
			if current[i] == "" {
				current[i] = rest[len(rest)-1]
				rest = rest[:len(rest)-1]
			}
		}
		return current, OutcomeUpdated
	case len(names) == 2 && current.Occupied() == 2:
		return Slots{names[0], names[1]}, OutcomeUpdated
	case len(names) == 1 && (current[0] == names[0] || current[1] == names[0]):
		for i := range current {
			if current[i] == names[0] {
				current[i] = ""
			}
		}
		return current, OutcomeUpdated
	}
	return current, OutcomeUnchanged
}

func (e *Engine) today() time.Time {
	now := e.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (e *Engine) toLineup(channelID string, doc docstore.Doc) (*Lineup, error) {
	var stored lineupDoc
	if err := doc.DataTo(&stored); err != nil {
		return nil, err
	}

	lu := &Lineup{
		ChannelID:  channelID,
		PlayOnDate: stored.PlayOnDate,
		Opponent:   stored.Opponent,
		path:       doc.Path,
	}
	if lu.PlayOnDate == "" {
		lu.PlayOnDate = doc.ID
	}
	if stored.Home != nil {
		lu.Home = *stored.Home
	}
	if stored.Courts != nil {
		lu.Courts = make(map[Court]Slots, NumCourts)
		for _, c := range Courts() {
			lu.Courts[c] = toSlots(stored.Courts[strconv.Itoa(int(c))])
		}
	}
	if stored.Available != nil {
		lu.Available = make(map[Hour][]string, len(Hours))
		for _, h := range Hours {
			lu.Available[h] = stored.Available[strconv.Itoa(int(h))]
		}
		lu.No = stored.Available["no"]
	}
	return lu, nil
}

func toSlots(stored []*string) Slots {
	var slots Slots
	for i := 0; i < len(slots) && i < len(stored); i++ {
		if stored[i] != nil {
			slots[i] = *stored[i]
		}
	}
	return slots
}

func fromSlots(slots Slots) []*string {
	out := make([]*string, len(slots))
	for i := range slots {
		if slots[i] != "" {
			name := slots[i]
			out[i] = &name
		}
	}
	return out
}

func decodeDoc(current map[string]any) (lineupDoc, error) {
	var doc lineupDoc
	if current == nil {
		return doc, nil
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func encodeDoc(doc lineupDoc) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
