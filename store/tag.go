package store

import (
	"context"
	"database/sql"
	"strings"
	"unicode"
)

const (
	// MaxTagsPerMemo caps how many tag names one attach call considers.
	MaxTagsPerMemo = 3
	// MaxTagLength is the longest normalized tag name, in characters.
	MaxTagLength = 20
)

// NormalizeTag lowercases s and keeps letters, digits, '-' and '_', truncated
// to MaxTagLength characters. The result may be empty.
func NormalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == MaxTagLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_' {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}

// AttachTags links up to MaxTagsPerMemo of names to the memo. Names that
// normalize to nothing or repeat are skipped; attaching an existing pair is a no-op.
// It returns the normalized names that were linked.
func (s *Store) AttachTags(ctx context.Context, memoID string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) > MaxTagsPerMemo {
		names = names[:MaxTagsPerMemo]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, FormatError(err)
	}
	defer tx.Rollback()

	attached := []string{}
	seen := map[string]bool{}
	for _, raw := range names {
		name := NormalizeTag(raw)
		if name == "" || seen[name] {
			continue
		}
		tagID, err := upsertTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO memo_tag (memo_id, tag_id) VALUES (?, ?)`, memoID, tagID); err != nil {
			return nil, FormatError(err)
		}
		seen[name] = true
		attached = append(attached, name)
	}

	if err := tx.Commit(); err != nil {
		return nil, FormatError(err)
	}
	return attached, nil
}

func upsertTag(ctx context.Context, tx *sql.Tx, name string) (int, error) {
	query := `
		INSERT INTO tag (name)
		VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, name); err != nil {
		return 0, FormatError(err)
	}

	var id int
	if err := tx.QueryRowContext(ctx, `SELECT id FROM tag WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, FormatError(err)
	}
	return id, nil
}

// ListMemoTags returns the memo's tag names in alphabetical order.
func (s *Store) ListMemoTags(ctx context.Context, memoID string) ([]string, error) {
	query := `
		SELECT tag.name
		FROM memo_tag
		JOIN tag ON tag.id = memo_tag.tag_id
		WHERE memo_tag.memo_id = ?
		ORDER BY tag.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, memoID)
	if err != nil {
		return nil, FormatError(err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, FormatError(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, FormatError(err)
	}
	return names, nil
}

// ListMemosByTag returns every non-secret memo carrying the tag, oldest first.
// PRIVATE memos of any user are included.
func (s *Store) ListMemosByTag(ctx context.Context, name string) ([]*Memo, error) {
	name = NormalizeTag(name)
	if name == "" {
		return []*Memo{}, nil
	}

	query := `
		SELECT
			memo.id,
			memo.creator_id,
			memo.created_ts,
			memo.content,
			memo.visibility,
			memo.password_hash
		FROM tag
		JOIN memo_tag ON memo_tag.tag_id = tag.id
		JOIN memo ON memo.id = memo_tag.memo_id
		WHERE tag.name = ? AND memo.visibility <> ?
		ORDER BY memo.created_ts ASC, memo.rowid ASC
	`
	rows, err := s.db.QueryContext(ctx, query, name, Secret)
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

func vacuumMemoTag(ctx context.Context, tx *sql.Tx) error {
	stmt := `
	DELETE FROM
		memo_tag
	WHERE
		memo_id NOT IN (
			SELECT
				id
			FROM
				memo
		)`
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return FormatError(err)
	}
	return nil
}
