package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HerbHall/wakdex/internal/docstore"
)

// Count returns the number of documents in collection matching filter.
func (s *SQLiteStore) Count(ctx context.Context, collection string, filter []docstore.Clause) (int, error) {
	where, args, err := whereClause(collection, filter)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Find returns the documents described by q.
func (s *SQLiteStore) Find(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	query, args, err := selectStatement(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []docstore.Document{}
	cols := len(q.Projection)
	for rows.Next() {
		if cols == 0 {
			var body string
			if err := rows.Scan(&body); err != nil {
				return nil, fmt.Errorf("scan %s: %w", collection, err)
			}
			docs = append(docs, docstore.Document(body))
			continue
		}

		vals := make([]sql.NullString, cols)
		dest := make([]any, cols)
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc, err := assemble(q.Projection, vals)
		if err != nil {
			return nil, fmt.Errorf("assemble %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

// Replace deletes every document in collection and inserts docs in order.
func (s *SQLiteStore) Replace(ctx context.Context, collection string, docs []docstore.Document) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", collection); err != nil {
			return fmt.Errorf("clear %s: %w", collection, err)
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO documents (collection, body) VALUES (?, json(?))")
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, d := range docs {
			if _, err := stmt.ExecContext(ctx, collection, string(d)); err != nil {
				return fmt.Errorf("insert %s[%d]: %w", collection, i, err)
			}
		}
		return nil
	})
}

// selectStatement renders q as one SELECT. Projected paths are read with the
// -> operator so each column keeps its JSON type; a missing path yields NULL.
func selectStatement(collection string, q docstore.Query) (string, []any, error) {
	var (
		b    strings.Builder
		args []any
	)

	b.WriteString("SELECT ")
	if len(q.Projection) == 0 {
		b.WriteString("body")
	} else {
		for i, p := range q.Projection {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("body -> ?")
			args = append(args, jsonPath(p))
		}
	}
	b.WriteString(" FROM documents")

	where, whereArgs, err := whereClause(collection, q.Filter)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(where)
	args = append(args, whereArgs...)

	b.WriteString(" ORDER BY ")
	for _, sf := range q.Sort {
		b.WriteString("json_extract(body, ?) ")
		if sf.Dir == docstore.Desc {
			b.WriteString("DESC, ")
		} else {
			b.WriteString("ASC, ")
		}
		args = append(args, jsonPath(sf.Path))
	}
	// Insertion order breaks ties so paging is stable.
	b.WriteString("id ASC")

	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, max(q.Skip, 0))

	return b.String(), args, nil
}

func whereClause(collection string, filter []docstore.Clause) (string, []any, error) {
	var b strings.Builder
	args := []any{collection}
	b.WriteString(" WHERE collection = ?")

	for _, c := range filter {
		path := jsonPath(c.Field)
		switch c.Op {
		case docstore.Eq:
			b.WriteString(" AND json_extract(body, ?) = ?")
			args = append(args, path, c.Value)
		case docstore.Gte:
			b.WriteString(" AND json_extract(body, ?) >= ?")
			args = append(args, path, c.Value)
		case docstore.Lte:
			b.WriteString(" AND json_extract(body, ?) <= ?")
			args = append(args, path, c.Value)
		case docstore.Contains:
			s, ok := c.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("contains on %s: want string, got %T", c.Field, c.Value)
			}
			b.WriteString(" AND instr(casefold(json_extract(body, ?)), casefold(?)) > 0")
			args = append(args, path, s)
		case docstore.In:
			vs, ok := c.Value.([]int)
			if !ok {
				return "", nil, fmt.Errorf("in on %s: want []int, got %T", c.Field, c.Value)
			}
			if len(vs) == 0 {
				b.WriteString(" AND 0")
				continue
			}
			b.WriteString(" AND json_extract(body, ?) IN (")
			args = append(args, path)
			for i, v := range vs {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString("?")
				args = append(args, v)
			}
			b.WriteString(")")
		default:
			return "", nil, fmt.Errorf("unsupported operator %s on %s", c.Op, c.Field)
		}
	}
	return b.String(), args, nil
}

// jsonPath converts a dotted path ("title.en") to a SQLite JSON path
// ("$.title.en").
func jsonPath(dotted string) string {
	return "$." + dotted
}

// assemble rebuilds a nested JSON object from projected path values.
func assemble(paths []string, vals []sql.NullString) (docstore.Document, error) {
	root := map[string]any{}
	for i, p := range paths {
		if !vals[i].Valid {
			continue
		}
		setPath(root, strings.Split(p, "."), json.RawMessage(vals[i].String))
	}
	b, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	return docstore.Document(b), nil
}

func setPath(m map[string]any, keys []string, v json.RawMessage) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			if _, taken := m[k]; taken {
				// An ancestor path was projected whole; it already holds v.
				return
			}
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = v
}

// Collections returns the number of documents per collection.
func (s *SQLiteStore) Collections(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT collection, COUNT(*) FROM documents GROUP BY collection")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}
