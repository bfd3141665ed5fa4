// Package sqlite provides a Store implementation backed by a SQLite
// database. Each collection maps to one table holding documents as JSON
// bodies; equality conditions are compiled to json_extract lookups so
// filtering happens in the database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/asaidimu/go-umbra/core/persistence"
	"github.com/asaidimu/go-umbra/core/schema"
	"go.uber.org/zap"
)

// Store persists documents of one collection in a SQLite table with the
// layout (id TEXT PRIMARY KEY, body TEXT NOT NULL).
type Store struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

var _ persistence.Store = (*Store)(nil)

// NewStore creates a store for the given table, creating the table when it
// does not exist. A nil logger falls back to a no-op logger.
func NewStore(db *sql.DB, table string, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires a database handle")
	}
	if table == "" {
		return nil, fmt.Errorf("sqlite store requires a table name")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (id TEXT PRIMARY KEY, body TEXT NOT NULL)`, table)
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("failed to create table %q: %w", table, err)
	}

	return &Store{db: db, table: table, logger: logger}, nil
}

// Insert persists a document as a JSON body. The document must carry a
// string id; the collection layer assigns one before insertion.
func (s *Store) Insert(ctx context.Context, doc schema.Document) error {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("document has no string id")
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", id, err)
	}

	stmt := fmt.Sprintf(`INSERT INTO %q (id, body) VALUES (?, ?)`, s.table)
	s.logger.Debug("Executing SQL INSERT", zap.String("sql", stmt), zap.String("id", id))

	if _, err := s.db.ExecContext(ctx, stmt, id, string(body)); err != nil {
		return fmt.Errorf("failed to insert document %q into %q: %w", id, s.table, err)
	}
	return nil
}

// Find returns the documents matching all equality conditions. Conditions
// are compiled to json_extract comparisons; operator documents are not
// supported by this store. Numbers round-trip through JSON and come back as
// float64.
func (s *Store) Find(ctx context.Context, conditions map[string]any, limit int) ([]schema.Document, error) {
	where, params, err := s.compileConditions(conditions)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`SELECT body FROM %q`, s.table)
	if where != "" {
		stmt += " WHERE " + where
	}
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	s.logger.Debug("Executing SQL SELECT", zap.String("sql", stmt), zap.Any("params", params))

	rows, err := s.db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %q: %w", s.table, err)
	}
	defer rows.Close()

	var results []schema.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan row from %q: %w", s.table, err)
		}
		var doc schema.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document body from %q: %w", s.table, err)
		}
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows from %q: %w", s.table, err)
	}
	return results, nil
}

// compileConditions builds a WHERE clause over json_extract lookups. Keys
// are sorted so generated SQL is deterministic.
func (s *Store) compileConditions(conditions map[string]any) (string, []any, error) {
	if len(conditions) == 0 {
		return "", nil, nil
	}

	fields := make([]string, 0, len(conditions))
	for field := range conditions {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	clauses := make([]string, 0, len(fields))
	params := make([]any, 0, len(fields))
	for _, field := range fields {
		value := conditions[field]
		switch value.(type) {
		case map[string]any:
			return "", nil, fmt.Errorf("unsupported operator condition on field %q: sqlite store is equality only", field)
		case nil:
			clauses = append(clauses, fmt.Sprintf(`json_extract(body, '$.%s') IS NULL`, field))
		default:
			clauses = append(clauses, fmt.Sprintf(`json_extract(body, '$.%s') = ?`, field))
			params = append(params, value)
		}
	}
	return strings.Join(clauses, " AND "), params, nil
}
