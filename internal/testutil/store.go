package testutil

import (
	"context"
	"testing"

	"github.com/HerbHall/wakdex/internal/fixtures"
	"github.com/HerbHall/wakdex/internal/store"
)

// NewStore creates an empty in-memory SQLiteStore for testing.
// The store is automatically closed when the test completes.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("testutil.NewStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewSeededStore creates an in-memory store loaded with the embedded
// reference catalog (4 items, 5 actions, 8 resources).
func NewSeededStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db := NewStore(t)
	set, err := fixtures.Default()
	if err != nil {
		t.Fatalf("testutil.NewSeededStore: load fixtures: %v", err)
	}
	if err := set.Seed(context.Background(), db); err != nil {
		t.Fatalf("testutil.NewSeededStore: seed: %v", err)
	}
	return db
}
