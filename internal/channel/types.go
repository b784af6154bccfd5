package channel

import (
	"regexp"

	"github.com/travis-scholtens/sladdle/internal/docstore"
)

// store handles all channel configuration operations.
type store struct {
	docs docstore.Store
}

// TeamDefinition is a channel's binding to a league team.
type TeamDefinition struct {
	League   string `json:"league"`
	Division string `json:"division"`
	Team     string `json:"team"`
}

// config is the stored shape of a channel document.
type config struct {
	League   string   `json:"league,omitempty"`
	Division string   `json:"division,omitempty"`
	Team     string   `json:"team,omitempty"`
	Admins   []string `json:"admins,omitempty"`
}

var mentionPattern = regexp.MustCompile(`^<@([^|>]+)(?:\|[^>]*)?>$`)

// ParseMention extracts the bare user ID from a Slack mention token like
// <@U123|display>. Returns "" when the token is not a mention.
func ParseMention(token string) string {
	m := mentionPattern.FindStringSubmatch(token)
	if m == nil {
		return ""
	}
	return m[1]
}
