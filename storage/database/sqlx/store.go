package sqlxdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kat-co/vala"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/trezcool/markmywords/core/document"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS document_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// Store keeps the document as one row of a key-value table.
type Store struct {
	db  *sqlx.DB
	key string
}

var _ document.Repository = (*Store)(nil) // interface compliance check

// Open connects with the given driver and creates the schema when missing.
func Open(ctx context.Context, driver, dsn, key string) (store *Store, err error) {
	if err = vala.BeginValidation().Validate(
		vala.StringNotEmpty(driver, "driver"),
		vala.StringNotEmpty(dsn, "dsn"),
		vala.StringNotEmpty(key, "key"),
	).Check(); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	switch driver {
	case DriverSQLite:
		// a second connection to ":memory:" would be another database
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		if err = ping(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	store = &Store{db: db, key: key}
	if err = store.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (s *Store) createSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "creating schema")
		}
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (document.Document, error) {
	var value string
	q := s.db.Rebind(`SELECT value FROM document_store WHERE key = ?`)
	if err := s.db.GetContext(ctx, &value, q, s.key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, errors.Wrap(err, "reading document")
	}
	return document.Decode([]byte(value))
}

func (s *Store) Save(ctx context.Context, doc document.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}

	q := s.db.Rebind(`
		INSERT INTO document_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	_, err = s.db.ExecContext(ctx, q, s.key, string(data), document.Now())
	return errors.Wrap(err, "writing document")
}

func (s *Store) Close() error {
	return s.db.Close()
}
