package docstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Query selects documents in a single collection by field filters.
// Field names come from code, never from user input, so they are spliced
// into the json_extract expression directly; values are always bound.
type Query struct {
	s          *store
	collection string
	filters    []filter
	orderBy    string
	limit      int
}

type filter struct {
	field string
	op    string
	value any
}

func (s *store) Query(collection string) *Query {
	return &Query{s: s, collection: collection}
}

// Where adds a field filter. Supported ops: "==", ">=".
func (q *Query) Where(field, op string, value any) *Query {
	q.filters = append(q.filters, filter{field: field, op: op, value: value})
	return q
}

func (q *Query) OrderBy(field string) *Query {
	q.orderBy = field
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Docs runs the query and returns the matching documents.
func (q *Query) Docs() ([]Doc, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("SELECT path, data, version FROM documents WHERE collection = ?")
	args := []any{q.collection}
	for _, f := range q.filters {
		op, err := sqlOp(f.op)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&sb, " AND json_extract(data, '$.%s') %s ?", f.field, op)
		args = append(args, f.value)
	}
	if q.orderBy != "" {
		fmt.Fprintf(&sb, " ORDER BY json_extract(data, '$.%s')", q.orderBy)
	}
	if q.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.limit)
	}

	rows, err := q.s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", q.collection, err)
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var path, raw string
		var version int64
		if err := rows.Scan(&path, &raw, &version); err != nil {
			return nil, err
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", path, err)
		}
		docs = append(docs, Doc{Path: path, ID: lastSegment(path), Version: version, data: data})
	}
	return docs, rows.Err()
}

func sqlOp(op string) (string, error) {
	switch op {
	case "==":
		return "=", nil
	case ">=":
		return ">=", nil
	}
	return "", fmt.Errorf("unsupported query operator %q", op)
}
