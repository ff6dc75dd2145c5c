package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/ordinal/internal/order"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedParent creates a parent whose children are stored in the given order
// and whose cache matches.
func seedParent(t *testing.T, s *Store, parentID string, children ...string) {
	t.Helper()
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		if err := tx.InsertParent(context.Background(), parentID); err != nil {
			return err
		}
		if _, err := tx.LockScope(context.Background(), parentID); err != nil {
			return err
		}
		for i, id := range children {
			if err := tx.InsertChild(context.Background(), parentID, id, i); err != nil {
				return err
			}
		}
		return tx.WriteOrderCache(context.Background(), parentID, order.Sequence(children))
	})
	if err != nil {
		t.Fatalf("seedParent(%s) failed: %v", parentID, err)
	}
}
