package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rabithua/memoask/common"
	"github.com/rabithua/memoask/server/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	db      *sql.DB
	profile *profile.Profile
}

// New creates a new instance of Store.
func New(db *sql.DB, profile *profile.Profile) *Store {
	return &Store{
		db:      db,
		profile: profile,
	}
}

// FormatError converts driver errors into application errors.
func FormatError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &common.Error{Code: common.NotFound, Err: fmt.Errorf("resource not found")}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &common.Error{Code: common.Conflict, Err: fmt.Errorf("resource already exists")}
	}
	return err
}
