package docstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// store handles all database operations for documents.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	// ErrNotFound is returned when no document exists at the requested path.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a mutation loses the version race too many times.
	ErrConflict = errors.New("document version conflict")
)

// Doc is a point-in-time read of a single document.
type Doc struct {
	Path    string
	ID      string
	Version int64
	data    map[string]any
}

// Data returns the decoded document fields.
func (d Doc) Data() map[string]any {
	return d.data
}

// DataTo decodes the document into the given struct pointer.
func (d Doc) DataTo(v any) error {
	raw, err := json.Marshal(d.data)
	if err != nil {
		return fmt.Errorf("failed to re-encode document %s: %w", d.Path, err)
	}
	return json.Unmarshal(raw, v)
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// lastSegment returns the final path component, the document's ID.
func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// parentCollection returns everything up to the final path component.
func parentCollection(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}
