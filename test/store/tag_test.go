package teststore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rabithua/memoask/store"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "  Meeting ", want: "meeting"},
		{raw: "#todo!", want: "todo"},
		{raw: "follow-up_2", want: "follow-up_2"},
		{raw: "会議", want: "会議"},
		{raw: "a very long tag name that keeps going", want: "averylongtagnamethat"},
		{raw: "!!!", want: ""},
		{raw: "", want: ""},
	}
	for _, test := range tests {
		require.Equal(t, test.want, store.NormalizeTag(test.raw), test.raw)
	}
}

func TestAttachTagsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	memo, err := ts.CreateMemo(ctx, &store.Memo{CreatorID: "u1", Content: "standup notes", Visibility: store.Public})
	require.NoError(t, err)

	attached, err := ts.AttachTags(ctx, memo.ID, []string{"Meeting", "meeting", "!!"})
	require.NoError(t, err)
	require.Equal(t, []string{"meeting"}, attached)

	_, err = ts.AttachTags(ctx, memo.ID, []string{"meeting"})
	require.NoError(t, err)

	tags, err := ts.ListMemoTags(ctx, memo.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"meeting"}, tags)
}

func TestAttachTagsCap(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	memo, err := ts.CreateMemo(ctx, &store.Memo{CreatorID: "u1", Content: "body", Visibility: store.Public})
	require.NoError(t, err)

	// Only the first three candidates are considered, before normalization.
	attached, err := ts.AttachTags(ctx, memo.ID, []string{"zeta", "alpha", "alpha", "beta"})
	require.NoError(t, err)
	require.Equal(t, []string{"zeta", "alpha"}, attached)

	tags, err := ts.ListMemoTags(ctx, memo.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "zeta"}, tags)

	attached, err = ts.AttachTags(ctx, memo.ID, nil)
	require.NoError(t, err)
	require.Empty(t, attached)
}

func TestListMemosByTag(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	seed := []*store.Memo{
		{CreatorID: "u1", CreatedTs: 300, Content: "public", Visibility: store.Public},
		{CreatorID: "u2", CreatedTs: 200, Content: "private", Visibility: store.Private},
		{CreatorID: "u1", CreatedTs: 100, Content: "secret", Visibility: store.Secret, PasswordHash: "hash"},
	}
	for _, memo := range seed {
		created, err := ts.CreateMemo(ctx, memo)
		require.NoError(t, err)
		_, err = ts.AttachTags(ctx, created.ID, []string{"work"})
		require.NoError(t, err)
	}

	list, err := ts.ListMemosByTag(ctx, " WORK ")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "private", list[0].Content)
	require.Equal(t, "public", list[1].Content)

	list, err = ts.ListMemosByTag(ctx, "???")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestDeleteMemoRemovesTagLinks(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	memo, err := ts.CreateMemo(ctx, &store.Memo{CreatorID: "u1", Content: "body", Visibility: store.Public})
	require.NoError(t, err)
	_, err = ts.AttachTags(ctx, memo.ID, []string{"work"})
	require.NoError(t, err)

	require.NoError(t, ts.DeleteMemo(ctx, &store.DeleteMemo{ID: memo.ID}))

	tags, err := ts.ListMemoTags(ctx, memo.ID)
	require.NoError(t, err)
	require.Empty(t, tags)

	list, err := ts.ListMemosByTag(ctx, "work")
	require.NoError(t, err)
	require.Empty(t, list)
}
