package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/ordinal/internal/engine"
	"github.com/roach88/ordinal/internal/order"
	"github.com/roach88/ordinal/internal/store"
)

// OpenStore opens a file-backed SQLite store in a temp dir and closes it
// when the test ends. Returns the store and its path, so tests can open a
// second handle on the same file.
func OpenStore(t testing.TB, opts ...store.Option) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ordinal.db")
	s, err := store.Open(path, opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// SeedParent creates parentID through the engine and appends children in
// order. Returns the resulting order.
func SeedParent(t testing.TB, eng *engine.Engine, parentID string, children ...string) order.Sequence {
	t.Helper()
	ctx := context.Background()
	if err := eng.CreateParent(ctx, parentID); err != nil {
		t.Fatalf("create parent %s: %v", parentID, err)
	}

	seq := order.Sequence{}
	for _, id := range children {
		var err error
		if seq, err = eng.Append(ctx, id, parentID); err != nil {
			t.Fatalf("append %s to %s: %v", id, parentID, err)
		}
	}
	return seq
}
