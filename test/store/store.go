package teststore

import (
	"context"
	"testing"

	"github.com/rabithua/memoask/server/profile"
	"github.com/rabithua/memoask/store"
	"github.com/rabithua/memoask/store/db"
	"github.com/rabithua/memoask/test"
)

func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	profile := test.GetTestingProfile(t)
	return NewTestingStoreWithProfile(ctx, t, profile)
}

func NewTestingStoreWithProfile(ctx context.Context, t *testing.T, profile *profile.Profile) *store.Store {
	t.Helper()
	db := db.NewDB(profile)
	if err := db.Open(ctx); err != nil {
		t.Fatalf("failed to open db, error: %+v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return store.New(db.DBInstance, profile)
}
