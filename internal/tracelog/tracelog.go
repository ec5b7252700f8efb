// Package tracelog provides a SQLite-backed trace of store dispatches.
//
// The log records every commit and action dispatched on a store, for
// debugging and the CLI trace command. It never stores or restores
// container state; the store core has no persistence.
package tracelog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Dispatch is one recorded commit or action.
type Dispatch struct {
	Seq        int64  `json:"seq"`
	StoreToken string `json:"store_token"`
	Kind       string `json:"kind"` // "commit" or "action"
	Name       string `json:"name"`
	Value      string `json:"value"`            // JSON
	Result     string `json:"result,omitempty"` // JSON
	Err        string `json:"err,omitempty"`
}

// Log is a durable dispatch trace. Uses SQLite with WAL mode for concurrent
// read access while a run is appending.
type Log struct {
	db    *sql.DB
	clock Clock
}

// Clock stamps dispatches with strictly increasing seq numbers.
// Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Open creates or opens a trace database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// multiple times on the same path. Use ":memory:" for an ephemeral log.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to trace database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY during appends.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	l := &Log{db: db}
	if err := l.resumeClock(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Append records one dispatch. Value and result are serialized to JSON;
// non-serializable results are recorded as their Go string form.
func (l *Log) Append(ctx context.Context, storeToken, kind, name string, value, result any, dispatchErr error) error {
	errText := ""
	if dispatchErr != nil {
		errText = dispatchErr.Error()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO dispatches (seq, store_token, kind, name, value, result, err)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		l.clock.Next(),
		storeToken,
		kind,
		name,
		marshalLoose(value),
		marshalLoose(result),
		errText,
	)
	if err != nil {
		return fmt.Errorf("append dispatch: %w", err)
	}
	return nil
}

// ReadByToken returns all dispatches recorded for a store token, ordered by
// seq. Returns an empty slice (not nil) when no records exist.
func (l *Log) ReadByToken(ctx context.Context, storeToken string) ([]Dispatch, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, store_token, kind, name, value, result, err
		FROM dispatches
		WHERE store_token = ?
		ORDER BY seq ASC
	`, storeToken)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	return scanDispatches(rows)
}

// ReadAll returns every recorded dispatch ordered by token then seq.
func (l *Log) ReadAll(ctx context.Context) ([]Dispatch, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, store_token, kind, name, value, result, err
		FROM dispatches
		ORDER BY store_token ASC, seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	return scanDispatches(rows)
}

func scanDispatches(rows *sql.Rows) ([]Dispatch, error) {
	out := []Dispatch{}
	for rows.Next() {
		var d Dispatch
		var result, errText sql.NullString
		if err := rows.Scan(&d.Seq, &d.StoreToken, &d.Kind, &d.Name, &d.Value, &result, &errText); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		d.Result = result.String
		d.Err = errText.String
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return out, nil
}

// resumeClock positions the clock after the highest recorded seq so a
// reopened log keeps appending monotonically.
func (l *Log) resumeClock() error {
	var max sql.NullInt64
	if err := l.db.QueryRow(`SELECT MAX(seq) FROM dispatches`).Scan(&max); err != nil {
		return fmt.Errorf("resume clock: %w", err)
	}
	if max.Valid {
		l.clock.seq.Store(max.Int64)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// marshalLoose serializes v to JSON, falling back to %v for values JSON
// cannot express (functions, channels).
func marshalLoose(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprintf("%v", v))
	}
	return string(b)
}
