// Package sqlite is an embedded record store for local runs and tests.
// Instants are stored as UTC unix milliseconds so range filters compare
// integers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"health-companion-api/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS medication_reminders (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	medication_name TEXT NOT NULL,
	dosage          TEXT NOT NULL,
	frequency       TEXT NOT NULL,
	time            TEXT NOT NULL,
	next_dose       INTEGER,
	notes           TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS appointments (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	doctor_name TEXT NOT NULL,
	specialty   TEXT NOT NULL,
	location    TEXT NOT NULL,
	date        INTEGER NOT NULL,
	time        TEXT NOT NULL,
	notes       TEXT NOT NULL,
	status      TEXT NOT NULL,
	notified    INTEGER NOT NULL DEFAULT 0,
	notified_at INTEGER,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS appointments_due_idx ON appointments (status, date);
CREATE TABLE IF NOT EXISTS health_surveys (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: shared-cache memory databases lock per table otherwise
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: millis(*t), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

type patch struct {
	sets []string
	args []any
}

func (p *patch) set(col string, v any) {
	p.sets = append(p.sets, col+" = ?")
	p.args = append(p.args, v)
}

func (s *Store) exec(ctx context.Context, table, userID, id string, p *patch) error {
	if len(p.sets) == 0 {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID).Scan(&one)
		return notFound(err)
	}
	q := `UPDATE ` + table + ` SET ` + strings.Join(p.sets, ", ") + ` WHERE id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, q, append(p.args, id, userID)...)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
