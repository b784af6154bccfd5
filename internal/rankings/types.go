package rankings

import (
	"time"

	"github.com/travis-scholtens/sladdle/internal/docstore"
)

// Flavor selects which of the two rating lists a snapshot read uses.
type Flavor string

const (
	// FlavorPTI is the paddle rating, where a lower number is better.
	FlavorPTI Flavor = "pti"
	// FlavorDivTSkill is the division skill score, where higher is better.
	FlavorDivTSkill Flavor = "divtskill"
)

// Reverse reports the sort direction for the flavor: true when a higher
// numeric rating is better.
func (f Flavor) Reverse() bool {
	return f == FlavorDivTSkill
}

// ParseFlavor validates a flavor token from the wire.
func ParseFlavor(s string) (Flavor, bool) {
	switch Flavor(s) {
	case FlavorPTI, FlavorDivTSkill:
		return Flavor(s), true
	}
	return "", false
}

// FreshnessWindow is the maximum age of a previous snapshot for it to be
// eligible for movement computation.
const FreshnessWindow = 5 * 24 * time.Hour

// Entry is one player in a rating list. Rating is nil for unranked players.
type Entry struct {
	Name   string
	Rating *float64
}

// Movement is a rank-position change against the previous snapshot.
type Movement int

const (
	MovementNone Movement = iota
	MovementUp
	MovementDown
)

// Row is one line of a ranking display, in final order.
type Row struct {
	Name     string
	Rating   *float64
	Movement Movement
	// Home marks rows from the requesting team's own roster; it is only
	// set during a head-to-head comparison.
	Home bool
}

// TeamListing is one entry of the division team list.
type TeamListing struct {
	ID   string
	Name string
}

// Store reads rating snapshot documents. Now is injectable for tests.
type Store struct {
	docs docstore.Store
	Now  func() time.Time
}

// teamDoc is the stored shape of a team's rating snapshot document.
type teamDoc struct {
	Name                  string              `json:"name"`
	PTI                   map[string]*float64 `json:"pti"`
	DivTSkill             map[string]*float64 `json:"divtskill"`
	PreviousPTI           map[string]*float64 `json:"previous_pti"`
	PreviousPTITime       int64               `json:"previous_pti_time"`
	PreviousDivTSkill     map[string]*float64 `json:"previous_divtskill"`
	PreviousDivTSkillTime int64               `json:"previous_divtskill_time"`
}
