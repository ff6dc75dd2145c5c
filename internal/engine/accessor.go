package engine

import (
	"context"

	"github.com/roach88/ordinal/internal/order"
)

// accessor translates between a Scope's rows and in-memory sequences.
//
// It remembers the order it loaded for each parent in this transaction;
// store validates proposals against that order, and refuses parents that
// were never loaded (no exclusive scope held).
type accessor struct {
	scope  Scope
	loaded map[string]order.Sequence
}

func newAccessor(scope Scope) *accessor {
	return &accessor{
		scope:  scope,
		loaded: make(map[string]order.Sequence),
	}
}

// load takes the exclusive scope on parentID and returns its order.
// Stored positions that are not dense fail with an invariant violation.
func (a *accessor) load(ctx context.Context, parentID string) (order.Sequence, error) {
	rows, err := a.scope.LockScope(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := order.ValidateRows(parentID, rows); err != nil {
		return nil, err
	}

	seq := order.FromRows(rows)
	a.loaded[parentID] = seq
	return seq.Clone(), nil
}

// current returns the loaded order for parentID without touching storage.
func (a *accessor) current(parentID string) (order.Sequence, error) {
	seq, ok := a.loaded[parentID]
	if !ok {
		return nil, order.NewInvariantViolation(parentID, "order accessed outside exclusive scope")
	}
	return seq, nil
}

// store persists next as parentID's order. next must be a permutation of
// the loaded order. Only children whose index changed are written; the
// cache is rewritten from next either way.
func (a *accessor) store(ctx context.Context, parentID string, next order.Sequence) error {
	cur, err := a.current(parentID)
	if err != nil {
		return err
	}
	if err := order.ValidatePermutation(parentID, cur, next); err != nil {
		return err
	}

	updates := changedRows(cur, next)
	if len(updates) > 0 {
		if err := a.scope.WritePositions(ctx, parentID, updates); err != nil {
			return err
		}
	}
	return a.commitCache(ctx, parentID, next)
}

// insert creates childID at the end of parentID's loaded order.
func (a *accessor) insert(ctx context.Context, parentID, childID string) (order.Sequence, error) {
	cur, err := a.current(parentID)
	if err != nil {
		return nil, err
	}

	if err := a.scope.InsertChild(ctx, parentID, childID, len(cur)); err != nil {
		return nil, err
	}
	next := order.Append(cur, childID)
	if err := a.commitCache(ctx, parentID, next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

// delete removes childID's row and shifts every later sibling down by one.
func (a *accessor) delete(ctx context.Context, parentID, childID string) (order.Sequence, error) {
	cur, err := a.current(parentID)
	if err != nil {
		return nil, err
	}
	next, ok := order.Remove(cur, childID)
	if !ok {
		return nil, order.ChildNotFound(parentID, childID)
	}

	if err := a.scope.DeleteChild(ctx, parentID, childID); err != nil {
		return nil, err
	}
	if updates := changedRows(cur, next); len(updates) > 0 {
		if err := a.scope.WritePositions(ctx, parentID, updates); err != nil {
			return nil, err
		}
	}
	if err := a.commitCache(ctx, parentID, next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

func (a *accessor) commitCache(ctx context.Context, parentID string, next order.Sequence) error {
	if err := a.scope.WriteOrderCache(ctx, parentID, next); err != nil {
		return err
	}
	a.loaded[parentID] = next.Clone()
	return nil
}

// forget drops parentID from the loaded set after the parent is deleted.
func (a *accessor) forget(parentID string) {
	delete(a.loaded, parentID)
}

// changedRows lists the children of next whose index differs from cur.
// Ids present in next but not in cur are always listed.
func changedRows(cur, next order.Sequence) []order.Row {
	was := make(map[string]int, len(cur))
	for i, id := range cur {
		was[id] = i
	}

	var updates []order.Row
	for i, id := range next {
		if old, ok := was[id]; ok && old == i {
			continue
		}
		updates = append(updates, order.Row{ChildID: id, Position: i})
	}
	return updates
}
