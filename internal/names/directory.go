// Package names reads the global display-name to Slack ID directory.
package names

import (
	"errors"
	"fmt"

	"github.com/travis-scholtens/sladdle/internal/docstore"
)

const directoryPath = "slack/names"

// Directory maps human display names to Slack user IDs.
type Directory struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Directory {
	return &Directory{docs: docs}
}

// IDs returns the full name-to-ID mapping. A missing directory document is
// treated as an empty mapping, not an error.
func (d *Directory) IDs() (map[string]string, error) {
	doc, err := d.docs.Get(directoryPath)
	if errors.Is(err, docstore.ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read name directory: %w", err)
	}

	var payload struct {
		IDs map[string]string `json:"ids"`
	}
	if err := doc.DataTo(&payload); err != nil {
		return nil, err
	}
	if payload.IDs == nil {
		payload.IDs = map[string]string{}
	}
	return payload.IDs, nil
}

// Mention renders a display name as a Slack mention when the directory knows
// the user, falling back to the plain name.
func Mention(name string, ids map[string]string) string {
	if id, ok := ids[name]; ok {
		return fmt.Sprintf("<@%s>", id)
	}
	return name
}
