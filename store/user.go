package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rabithua/memoask/common"
)

type User struct {
	ID string

	// Standard fields
	CreatedTs int64

	// Domain specific fields
	Username     string
	PasswordHash string
}

type FindUser struct {
	ID       *string
	Username *string
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	if create.Username == "" || create.PasswordHash == "" {
		return nil, &common.Error{Code: common.Invalid, Err: fmt.Errorf("username and password are required")}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, FormatError(err)
	}
	defer tx.Rollback()

	if create.ID == "" {
		create.ID = common.GenUUID()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	query := `
		INSERT INTO user (
			id,
			created_ts,
			username,
			password_hash
		)
		VALUES (?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, create.ID, create.CreatedTs, create.Username, create.PasswordHash); err != nil {
		return nil, FormatError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, FormatError(err)
	}

	user := *create
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			created_ts,
			username,
			password_hash
		FROM user
		WHERE ` + strings.Join(where, " AND ") + `
		LIMIT 1
	`
	var user User
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.CreatedTs,
		&user.Username,
		&user.PasswordHash,
	); err != nil {
		return nil, FormatError(err)
	}
	return &user, nil
}
