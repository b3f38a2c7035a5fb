package db

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/pkg/errors"
	"github.com/rabithua/memoask/server/profile"

	// sqlite driver.
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// pragmas applied to every freshly opened database.
var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
}

type DB struct {
	// sqlite db connection instance
	DBInstance *sql.DB
	profile    *profile.Profile
}

// NewDB returns a new instance of DB associated with the given datasource name.
func NewDB(profile *profile.Profile) *DB {
	db := &DB{
		profile: profile,
	}
	return db
}

// Open opens the sqlite file and applies the bootstrap schema.
func (db *DB) Open(ctx context.Context) (err error) {
	// Ensure a DSN is set before attempting to open the database.
	if db.profile.DSN == "" {
		return errors.New("dsn required")
	}

	sqliteDB, err := sql.Open("sqlite", db.profile.DSN)
	if err != nil {
		return errors.Wrapf(err, "failed to open db with dsn: %s", db.profile.DSN)
	}
	// One connection at a time: every store call is a single serialized statement or transaction.
	sqliteDB.SetMaxOpenConns(1)
	db.DBInstance = sqliteDB

	for _, pragma := range pragmas {
		if _, err := sqliteDB.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	if _, err := sqliteDB.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}

	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if db.DBInstance == nil {
		return nil
	}
	return db.DBInstance.Close()
}
