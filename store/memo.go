package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rabithua/memoask/common"
)

const (
	// MaxContentLength is the longest memo body accepted, in characters.
	MaxContentLength = 300
	// MaxMemosPerUser caps how many memos one user may keep.
	MaxMemosPerUser = 5
)

// Visibility is the type of a visibility.
type Visibility string

const (
	// Public is the PUBLIC visibility.
	Public Visibility = "PUBLIC"
	// Private is the PRIVATE visibility.
	Private Visibility = "PRIVATE"
	// Secret is the SECRET visibility, gated by a per-memo password.
	Secret Visibility = "SECRET"
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "PUBLIC"
	case Private:
		return "PRIVATE"
	case Secret:
		return "SECRET"
	}
	return "PRIVATE"
}

// ParseVisibility accepts the form values public, private and secret in any case.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToUpper(strings.TrimSpace(s))) {
	case Public:
		return Public, nil
	case Private:
		return Private, nil
	case Secret:
		return Secret, nil
	}
	return "", &common.Error{Code: common.Invalid, Err: fmt.Errorf("invalid visibility %q", s)}
}

type Memo struct {
	ID string

	// Standard fields
	CreatorID string
	CreatedTs int64

	// Domain specific fields
	Content      string
	Visibility   Visibility
	// PasswordHash is set only for SECRET memos.
	PasswordHash string
}

type FindMemo struct {
	ID *string

	// Standard fields
	CreatorID *string

	// Domain specific fields
	VisibilityList  []Visibility
	// ContentContains is a case-sensitive substring match.
	ContentContains *string

	// Pagination
	Limit                *int
	Offset               *int
	OrderByCreatedTsDesc bool
}

type DeleteMemo struct {
	ID string
}

func validateMemo(create *Memo) error {
	if create.CreatorID == "" {
		return &common.Error{Code: common.Invalid, Err: fmt.Errorf("creator id is required")}
	}
	if utf8.RuneCountInString(create.Content) > MaxContentLength {
		return &common.Error{Code: common.Invalid, Err: fmt.Errorf("content must be at most %d characters", MaxContentLength)}
	}
	switch create.Visibility {
	case Public, Private:
		if create.PasswordHash != "" {
			return &common.Error{Code: common.Invalid, Err: fmt.Errorf("only secret memos carry a password")}
		}
	case Secret:
		if create.PasswordHash == "" {
			return &common.Error{Code: common.Invalid, Err: fmt.Errorf("secret memos require a password")}
		}
	default:
		return &common.Error{Code: common.Invalid, Err: fmt.Errorf("invalid visibility %q", create.Visibility)}
	}
	return nil
}

func (s *Store) CreateMemo(ctx context.Context, create *Memo) (*Memo, error) {
	if err := validateMemo(create); err != nil {
		return nil, err
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

	var password sql.NullString
	if create.Visibility == Secret {
		password = sql.NullString{String: create.PasswordHash, Valid: true}
	}

	query := `
		INSERT INTO memo (
			id,
			creator_id,
			created_ts,
			content,
			visibility,
			password_hash
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(
		ctx,
		query,
		create.ID,
		create.CreatorID,
		create.CreatedTs,
		create.Content,
		create.Visibility,
		password,
	); err != nil {
		return nil, FormatError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, FormatError(err)
	}

	memo := *create
	return &memo, nil
}

// ListMemos returns memos matching find in creation order, oldest first
// unless OrderByCreatedTsDesc is set.
func (s *Store) ListMemos(ctx context.Context, find *FindMemo) ([]*Memo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, FormatError(err)
	}
	defer tx.Rollback()

	list, err := listMemos(ctx, tx, find)
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) GetMemo(ctx context.Context, find *FindMemo) (*Memo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, FormatError(err)
	}
	defer tx.Rollback()

	list, err := listMemos(ctx, tx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, &common.Error{Code: common.NotFound, Err: fmt.Errorf("memo not found")}
	}

	return list[0], nil
}

// CountMemos returns how many memos the creator owns.
func (s *Store) CountMemos(ctx context.Context, creatorID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memo WHERE creator_id = ?`, creatorID).Scan(&count); err != nil {
		return 0, FormatError(err)
	}
	return count, nil
}

func (s *Store) DeleteMemo(ctx context.Context, delete *DeleteMemo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return FormatError(err)
	}
	defer tx.Rollback()

	where, args := []string{"id = ?"}, []any{delete.ID}
	stmt := `DELETE FROM memo WHERE ` + strings.Join(where, " AND ")
	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return FormatError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &common.Error{Code: common.NotFound, Err: fmt.Errorf("memo not found")}
	}
	if err := vacuumMemoTag(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func listMemos(ctx context.Context, tx *sql.Tx, find *FindMemo) ([]*Memo, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "memo.id = ?"), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "memo.creator_id = ?"), append(args, *v)
	}
	if v := find.ContentContains; v != nil {
		where, args = append(where, "instr(memo.content, ?) > 0"), append(args, *v)
	}
	if v := find.VisibilityList; len(v) != 0 {
		list := []string{}
		for _, visibility := range v {
			list = append(list, "?")
			args = append(args, visibility)
		}
		where = append(where, fmt.Sprintf("memo.visibility IN (%s)", strings.Join(list, ",")))
	}

	orders := []string{"memo.created_ts ASC", "memo.rowid ASC"}
	if find.OrderByCreatedTsDesc {
		orders = []string{"memo.created_ts DESC", "memo.rowid DESC"}
	}

	query := `
	SELECT
		memo.id,
		memo.creator_id,
		memo.created_ts,
		memo.content,
		memo.visibility,
		memo.password_hash
	FROM memo
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY ` + strings.Join(orders, ", ")
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, FormatError(err)
	}
	defer rows.Close()

	list := make([]*Memo, 0)
	for rows.Next() {
		memo, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, memo)
	}

	if err := rows.Err(); err != nil {
		return nil, FormatError(err)
	}

	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemo(row rowScanner) (*Memo, error) {
	var memo Memo
	var password sql.NullString
	if err := row.Scan(
		&memo.ID,
		&memo.CreatorID,
		&memo.CreatedTs,
		&memo.Content,
		&memo.Visibility,
		&password,
	); err != nil {
		return nil, FormatError(err)
	}
	if password.Valid {
		memo.PasswordHash = password.String
	}
	return &memo, nil
}
