package rag

// Kind tells which shape a Result carries.
type Kind int

const (
	// KindNone means nothing was retrieved.
	KindNone Kind = iota
	// KindMemos carries memo bodies for the answerer.
	KindMemos
	// KindAuthor carries the author of a matching memo.
	KindAuthor
)

func (k Kind) String() string {
	switch k {
	case KindMemos:
		return "memos"
	case KindAuthor:
		return "author"
	}
	return "none"
}

// MemoHit is a memo body retrieved by keyword search.
type MemoHit struct {
	ID   string
	Body string
}

// AuthorHit identifies the author of a memo.
type AuthorHit struct {
	UserID string
}

// Result is the outcome of a retrieval. Memos is set only for KindMemos and
// Author only for KindAuthor.
type Result struct {
	Kind   Kind
	Memos  []MemoHit
	Author AuthorHit
}

func noneResult() Result {
	return Result{Kind: KindNone}
}

func memosResult(hits []MemoHit) Result {
	if len(hits) == 0 {
		return noneResult()
	}
	return Result{Kind: KindMemos, Memos: hits}
}

func authorResult(hit AuthorHit) Result {
	return Result{Kind: KindAuthor, Author: hit}
}
