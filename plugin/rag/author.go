package rag

import (
	"context"

	"github.com/rabithua/memoask/store"
)

// AuthorFinder looks up who wrote a memo. The configured super-admin is
// never disclosed.
type AuthorFinder struct {
	memos        MemoFinder
	superAdminID string
}

func NewAuthorFinder(memos MemoFinder, superAdminID string) *AuthorFinder {
	return &AuthorFinder{
		memos:        memos,
		superAdminID: superAdminID,
	}
}

// FindAuthor returns the creator of the earliest memo, of any user and any
// visibility, whose body contains keyword case-sensitively. It returns nil
// when nothing matches or when that memo belongs to the super-admin.
func (a *AuthorFinder) FindAuthor(ctx context.Context, keyword string) (*AuthorHit, error) {
	limit := 1
	memos, err := a.memos.ListMemos(ctx, &store.FindMemo{
		ContentContains: &keyword,
		Limit:           &limit,
	})
	if err != nil {
		return nil, err
	}
	if len(memos) == 0 {
		return nil, nil
	}

	creatorID := memos[0].CreatorID
	if creatorID == a.superAdminID {
		return nil, nil
	}
	return &AuthorHit{UserID: creatorID}, nil
}
