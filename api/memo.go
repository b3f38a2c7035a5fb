package api

// CreateMemoRequest is the memo creation form. Password is only read for
// secret memos.
type CreateMemoRequest struct {
	Content    string `form:"body"`
	Visibility string `form:"visibility"`
	Password   string `form:"password"`
	EnableTags string `form:"enable_tags"`
}

// TagsEnabled reports whether the tag checkbox was ticked.
func (r *CreateMemoRequest) TagsEnabled() bool {
	return r.EnableTags == "on"
}

// UnlockMemoRequest carries the password of a secret memo.
type UnlockMemoRequest struct {
	Password string `form:"password"`
}

// SearchRequest is the assistant search form. UserID optionally names one
// other user whose memos are searched as well.
type SearchRequest struct {
	Query  string `form:"query" query:"q"`
	UserID string `form:"user_id" query:"user_id"`
}
