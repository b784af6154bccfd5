package lineup

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/docstore"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

var (
	// ErrPermissionDenied is returned when a write is attempted without access.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrMissingDate is returned when an operation requires a resolved date.
	ErrMissingDate = errors.New("missing date")
	// ErrNotFound is returned when no lineup exists for the requested date.
	ErrNotFound = errors.New("no lineup")
	// ErrAlreadyExists is returned on a duplicate create for the same date.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNoAvailability is returned when a date has no availability record.
	ErrNoAvailability = errors.New("no availability record")
)

// NumCourts is the fixed number of courts per match.
const NumCourts = 6

// Court identifies one of the 6 playing positions, 1 through 6.
type Court int

// ParseCourt validates a court token.
func ParseCourt(token string) (Court, error) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > NumCourts {
		return 0, fmt.Errorf("invalid court %q: expected 1-%d", token, NumCourts)
	}
	return Court(n), nil
}

// Courts returns all court identifiers in order.
func Courts() []Court {
	cs := make([]Court, NumCourts)
	for i := range cs {
		cs[i] = Court(i + 1)
	}
	return cs
}

// Hour identifies one of the match start-time buckets.
type Hour int

// Hours lists the valid availability buckets in display order.
var Hours = []Hour{7, 8, 9}

// ParseHours extracts valid hour buckets from the digits of the given
// tokens, so "789", "7 9" and "8" all work. Unknown digits are dropped.
func ParseHours(tokens []string) []Hour {
	var hours []Hour
	seen := map[Hour]bool{}
	for _, token := range tokens {
		for _, r := range token {
			h := Hour(r - '0')
			switch h {
			case 7, 8, 9:
				if !seen[h] {
					seen[h] = true
					hours = append(hours, h)
				}
			}
		}
	}
	return hours
}

// Slots holds the two player positions of a court; "" marks an empty slot.
type Slots [2]string

// Occupied counts the filled slots.
func (s Slots) Occupied() int {
	n := 0
	for _, name := range s {
		if name != "" {
			n++
		}
	}
	return n
}

// Lineup is the per-match-date record for a channel. Courts is nil until a
// lineup is created; Available is nil until an availability record is.
type Lineup struct {
	ChannelID  string
	PlayOnDate string
	Courts     map[Court]Slots
	Opponent   string
	Home       bool
	Available  map[Hour][]string
	// No lists players who marked themselves unavailable.
	No []string

	path string
}

// HasCourts reports whether the lineup sub-feature has been initialized.
func (l *Lineup) HasCourts() bool {
	return l.Courts != nil
}

// HasAvailability reports whether the availability sub-feature has been
// initialized.
func (l *Lineup) HasAvailability() bool {
	return l.Available != nil
}

// NotFull lists court numbers where either slot is empty.
func (l *Lineup) NotFull() []Court {
	var courts []Court
	for _, c := range Courts() {
		if l.Courts[c].Occupied() < 2 {
			courts = append(courts, c)
		}
	}
	return courts
}

// Empty reports whether no court has any player assigned.
func (l *Lineup) Empty() bool {
	for _, c := range Courts() {
		if l.Courts[c].Occupied() > 0 {
			return false
		}
	}
	return true
}

// AssignOutcome describes what a court assignment call did.
type AssignOutcome int

const (
	// OutcomeRead means no names were supplied; current occupants returned.
	OutcomeRead AssignOutcome = iota
	// OutcomeUpdated means the slots were changed and persisted.
	OutcomeUpdated
	// OutcomeUnchanged means the request fit no merge rule; soft rejection.
	OutcomeUnchanged
)

// CourtAssignment is the result of an AssignCourt call.
type CourtAssignment struct {
	Court      Court
	Occupants  Slots
	PlayOnDate string
	Outcome    AssignOutcome
}

// AvailabilityMark is the result of a MarkAvailability call.
type AvailabilityMark struct {
	UserID     string
	PlayOnDate string
	Opponent   string
	Home       bool
	Hours      []Hour
}

// Engine owns the lifecycle of per-channel, per-date lineup documents.
// Now is injectable for tests.
type Engine struct {
	docs     docstore.Store
	channels channel.Store
	ratings  *rankings.Store
	Now      func() time.Time
}

// lineupDoc is the stored shape of a lineup document.
type lineupDoc struct {
	PlayOnDate string               `json:"play_on_date"`
	Courts     map[string][]*string `json:"courts,omitempty"`
	Available  map[string][]string  `json:"available,omitempty"`
	Opponent   string               `json:"opponent,omitempty"`
	Home       *bool                `json:"home,omitempty"`
}
