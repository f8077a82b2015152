package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQL stores each collection as a gtfs_<collection> table holding one JSON
// document per row. Declared schema fields become stored generated columns so
// equality searches on them stay indexable.
type MySQL struct {
	db *sql.DB
}

// ConnectMySQL returns a MySQL-backed store using env vars
// (DB_USER, DB_PASS, DB_HOST, DB_PORT, DB_NAME).
func ConnectMySQL() (*MySQL, error) {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4,utf8", user, pass, host, port, name)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return &MySQL{db: db}, nil
}

// NewMySQL wraps an existing connection.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

// Ping verifies the connection.
func (s *MySQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the underlying connection pool.
func (s *MySQL) Close() error { return s.db.Close() }

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func tableFor(collection string) (string, error) {
	if !identRe.MatchString(collection) {
		return "", fmt.Errorf("store: invalid collection name %q", collection)
	}
	return "gtfs_" + collection, nil
}

// DeclareSchema drops and recreates the collection table. An incompatible
// schema from a prior run must not linger, so there is no ALTER path.
func (s *MySQL) DeclareSchema(ctx context.Context, collection string, mapping Mapping) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("store: drop %s: %w", table, err)
	}

	cols := []string{
		"doc_id VARCHAR(36) NOT NULL PRIMARY KEY",
		"doc JSON NOT NULL",
	}
	var keys []string
	for field, ft := range mapping {
		if !identRe.MatchString(field) {
			return fmt.Errorf("store: invalid field name %q in %s mapping", field, collection)
		}
		var def string
		switch ft {
		case TypeString:
			def = fmt.Sprintf("%s VARCHAR(255) GENERATED ALWAYS AS (JSON_UNQUOTE(JSON_EXTRACT(doc, '$.%s'))) STORED", field, field)
		case TypeInteger:
			def = fmt.Sprintf("%s BIGINT GENERATED ALWAYS AS (JSON_EXTRACT(doc, '$.%s')) STORED", field, field)
		case TypeFloat:
			def = fmt.Sprintf("%s DOUBLE GENERATED ALWAYS AS (JSON_EXTRACT(doc, '$.%s')) STORED", field, field)
		case TypeGeoPoint:
			// coordinate pairs stay inside the JSON document
			continue
		default:
			return fmt.Errorf("store: unknown field type %q for %s.%s", ft, collection, field)
		}
		cols = append(cols, def)
		switch field {
		case "agency_key", "parent_station", "location_type", "stop_id", "trip_id":
			keys = append(keys, fmt.Sprintf("KEY idx_%s_%s (%s)", table, field, field))
		}
	}
	if _, ok := mapping["agency_key"]; !ok {
		cols = append(cols, agencyKeyColumn)
		keys = append(keys, fmt.Sprintf("KEY idx_%s_agency_key (agency_key)", table))
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		table, strings.Join(append(cols, keys...), ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: create %s: %w", table, err)
	}
	return nil
}

const agencyKeyColumn = "agency_key VARCHAR(64) GENERATED ALWAYS AS (JSON_UNQUOTE(JSON_EXTRACT(doc, '$.agency_key'))) STORED"

// ensureTable creates the minimal table for collections without a declared
// schema, so purge and import work for mapping-less file specs.
func (s *MySQL) ensureTable(ctx context.Context, collection string) (string, error) {
	table, err := tableFor(collection)
	if err != nil {
		return "", err
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (doc_id VARCHAR(36) NOT NULL PRIMARY KEY, doc JSON NOT NULL, %s, KEY idx_%s_agency_key (agency_key)) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		table, agencyKeyColumn, table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return "", fmt.Errorf("store: ensure %s: %w", table, err)
	}
	return table, nil
}

// Purge deletes every document matching q.
func (s *MySQL) Purge(ctx context.Context, collection string, q Query) error {
	table, err := s.ensureTable(ctx, collection)
	if err != nil {
		return err
	}
	where, args, err := whereClause(q)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+where, args...); err != nil {
		return fmt.Errorf("store: purge %s: %w", table, err)
	}
	return nil
}

// CommitBatch applies the whole batch inside one transaction.
func (s *MySQL) CommitBatch(ctx context.Context, collection string, ops []Op) error {
	table, err := s.ensureTable(ctx, collection)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin batch for %s: %w", table, err)
	}
	defer tx.Rollback()

	insert, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (doc_id, doc) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare insert %s: %w", table, err)
	}
	defer insert.Close()

	for _, op := range ops {
		body, err := json.Marshal(op.Doc)
		if err != nil {
			return fmt.Errorf("store: encode document for %s: %w", table, err)
		}
		switch op.Kind {
		case OpCreate:
			if _, err := insert.ExecContext(ctx, op.ID, body); err != nil {
				return fmt.Errorf("store: insert into %s: %w", table, err)
			}
		case OpUpdate:
			if err := s.mergePatch(ctx, tx, table, op.ID, body, op.RetryOnConflict); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit batch for %s: %w", table, err)
	}
	return nil
}

// Search returns documents matching the equality filters in q.
func (s *MySQL) Search(ctx context.Context, collection string, q Query) ([]Document, error) {
	table, err := s.ensureTable(ctx, collection)
	if err != nil {
		return nil, err
	}
	where, args, err := whereClause(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT doc_id, doc FROM "+table+where+" ORDER BY doc_id", args...)
	if err != nil {
		return nil, fmt.Errorf("store: search %s: %w", table, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", table, err)
		}
		var rec Record
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("store: decode document %s/%s: %w", table, id, err)
		}
		out = append(out, Document{ID: id, Doc: rec})
	}
	return out, rows.Err()
}

// Update merge-patches a single document outside any batch.
func (s *MySQL) Update(ctx context.Context, collection, id string, partial Record, retryOnConflict int) error {
	table, err := s.ensureTable(ctx, collection)
	if err != nil {
		return err
	}
	body, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("store: encode update for %s: %w", table, err)
	}
	return s.mergePatch(ctx, s.db, table, id, body, retryOnConflict)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *MySQL) mergePatch(ctx context.Context, ex execer, table, id string, body []byte, retries int) error {
	query := "UPDATE " + table + " SET doc = JSON_MERGE_PATCH(doc, ?) WHERE doc_id = ?"
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if _, err := ex.ExecContext(ctx, query, body, id); err != nil {
			lastErr = err
			if isConflict(err) {
				continue
			}
			return fmt.Errorf("store: update %s/%s: %w", table, id, err)
		}
		return nil
	}
	return fmt.Errorf("store: update %s/%s: retries exhausted: %w", table, id, lastErr)
}

func isConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Deadlock") || strings.Contains(msg, "Lock wait timeout")
}

func whereClause(q Query) (string, []any, error) {
	if len(q) == 0 {
		return "", nil, nil
	}
	var conds []string
	var args []any
	for field, v := range q {
		if !identRe.MatchString(field) {
			return "", nil, fmt.Errorf("store: invalid query field %q", field)
		}
		conds = append(conds, fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(doc, '$.%s')) = ?", field))
		args = append(args, fmt.Sprint(v))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
