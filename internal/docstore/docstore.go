package docstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new document Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// mutateAttempts bounds the optimistic-concurrency retry loop.
const mutateAttempts = 3

func (s *store) Get(path string) (Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.get(s.db, path)
}

// querier covers both *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *store) get(q querier, path string) (Doc, error) {
	var raw string
	var version int64
	err := q.QueryRow("SELECT data, version FROM documents WHERE path = ?", path).Scan(&raw, &version)
	if err == sql.ErrNoRows {
		return Doc{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return Doc{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Doc{}, fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	return Doc{Path: path, ID: lastSegment(path), Version: version, data: data}, nil
}

// Set writes the full document, replacing any existing content.
func (s *store) Set(path string, value map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO documents (path, collection, data, version)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(path) DO UPDATE SET
			data = excluded.data,
			version = documents.version + 1;
	`, path, parentCollection(path), string(raw))
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}

// Update merges the given top-level fields into the existing document,
// creating it when absent.
func (s *store) Update(path string, value map[string]any) error {
	_, err := s.Mutate(path, func(current map[string]any) (map[string]any, error) {
		if current == nil {
			current = make(map[string]any, len(value))
		}
		for k, v := range value {
			current[k] = v
		}
		return current, nil
	})
	return err
}

func (s *store) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM documents WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", path, err)
	}
	return nil
}

// Mutate runs a read-modify-write cycle against a single document under
// optimistic concurrency: the write only lands if the document version is
// unchanged since the read, and the whole cycle is retried on a lost race.
func (s *store) Mutate(path string, fn MutateFunc) (Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= mutateAttempts; attempt++ {
		doc, err := s.mutateOnce(path, fn)
		if err == ErrConflict {
			log.Warn("Document version conflict, retrying", "path", path, "attempt", attempt)
			continue
		}
		return doc, err
	}
	return Doc{}, fmt.Errorf("%s: %w", path, ErrConflict)
}

func (s *store) mutateOnce(path string, fn MutateFunc) (Doc, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Doc{}, fmt.Errorf("failed to begin transaction for %s: %w", path, err)
	}
	defer tx.Rollback()

	var current map[string]any
	exists := true
	doc, err := s.get(tx, path)
	switch {
	case err == nil:
		current = doc.data
	case errorsIsNotFound(err):
		exists = false
	default:
		return Doc{}, err
	}

	next, err := fn(current)
	if err != nil {
		return Doc{}, err
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return Doc{}, fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	if exists {
		res, err := tx.Exec(
			"UPDATE documents SET data = ?, version = version + 1 WHERE path = ? AND version = ?",
			string(raw), path, doc.Version)
		if err != nil {
			return Doc{}, fmt.Errorf("failed to write document %s: %w", path, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Doc{}, err
		}
		if n == 0 {
			return Doc{}, ErrConflict
		}
		doc.Version++
	} else {
		_, err := tx.Exec(
			"INSERT INTO documents (path, collection, data, version) VALUES (?, ?, ?, 1)",
			path, parentCollection(path), string(raw))
		if err != nil {
			return Doc{}, ErrConflict
		}
		doc = Doc{Path: path, ID: lastSegment(path), Version: 1}
	}

	if err := tx.Commit(); err != nil {
		return Doc{}, fmt.Errorf("failed to commit document %s: %w", path, err)
	}
	doc.data = next
	return doc, nil
}
