package rag

import (
	"context"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/rabithua/memoask/store"
)

// MemoFinder is the storage the retrieval components read from.
type MemoFinder interface {
	ListMemos(ctx context.Context, find *store.FindMemo) ([]*store.Memo, error)
}

var (
	ownerVisibilities           = []store.Visibility{store.Public, store.Private}
	ownerVisibilitiesWithSecret = []store.Visibility{store.Public, store.Private, store.Secret}

	// A stranger asking for secrets gets SECRET bodies but never PRIVATE ones,
	// while an owner without the flag gets PRIVATE but not SECRET.
	strangerVisibilities           = []store.Visibility{store.Public}
	strangerVisibilitiesWithSecret = []store.Visibility{store.Public, store.Secret}
)

// EligibleVisibilities returns the visibilities a search may match.
func EligibleVisibilities(isOwner, includeSecret bool) []store.Visibility {
	switch {
	case isOwner && includeSecret:
		return slices.Clone(ownerVisibilitiesWithSecret)
	case isOwner:
		return slices.Clone(ownerVisibilities)
	case includeSecret:
		return slices.Clone(strangerVisibilitiesWithSecret)
	default:
		return slices.Clone(strangerVisibilities)
	}
}

// Searcher runs keyword searches over one user's memos.
type Searcher struct {
	memos MemoFinder
}

func NewSearcher(memos MemoFinder) *Searcher {
	return &Searcher{memos: memos}
}

// Search returns the target user's memos whose body contains keyword, case
// insensitively, limited to the visibilities the caller may match. Results
// keep storage order.
func (s *Searcher) Search(ctx context.Context, callerID, keyword string, includeSecret bool, targetUserID string) ([]MemoHit, error) {
	if targetUserID == "" {
		return []MemoHit{}, nil
	}

	isOwner := callerID != "" && callerID == targetUserID
	memos, err := s.memos.ListMemos(ctx, &store.FindMemo{
		CreatorID:      &targetUserID,
		VisibilityList: EligibleVisibilities(isOwner, includeSecret),
	})
	if err != nil {
		return nil, err
	}

	keyword = strings.ToLower(keyword)
	hits := []MemoHit{}
	for _, memo := range memos {
		if strings.Contains(strings.ToLower(memo.Content), keyword) {
			hits = append(hits, MemoHit{ID: memo.ID, Body: memo.Content})
		}
	}
	return hits, nil
}
