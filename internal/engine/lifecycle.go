package engine

import (
	"context"

	"github.com/roach88/ordinal/internal/order"
)

// Lifecycle hooks. Hosts call these explicitly from the same transaction
// that creates or destroys their own records; nothing fires implicitly.

// CreateParent inserts an empty parent. Returns an invariant violation if
// the id is empty or already taken.
func (op *Op) CreateParent(ctx context.Context, parentID string) error {
	if err := requireID(parentID, "parent", parentID); err != nil {
		return err
	}
	if err := op.parents.InsertParent(ctx, parentID); err != nil {
		return err
	}
	op.logger.Debug("parent created", "parent_id", parentID)
	return nil
}

// CreateChild is the creation hook: the new child takes the next position
// under parentID.
func (op *Op) CreateChild(ctx context.Context, parentID, childID string) (order.Sequence, error) {
	return op.Append(ctx, childID, parentID)
}

// DeleteChild is the deletion hook: the child's row is removed and every
// later sibling shifts down by one.
func (op *Op) DeleteChild(ctx context.Context, childID string) (order.Sequence, error) {
	return op.Remove(ctx, childID)
}

// DeleteParent removes a parent together with all of its children.
//
// Children go through the same compaction path as DeleteChild, tail first so
// no sibling is shifted, and the parent row is deleted last. The cache is
// kept consistent at every step even though it is discarded with the row.
func (op *Op) DeleteParent(ctx context.Context, parentID string) error {
	seq, err := op.acc.load(ctx, parentID)
	if err != nil {
		return err
	}

	for i := len(seq) - 1; i >= 0; i-- {
		if _, err := op.acc.delete(ctx, parentID, seq[i]); err != nil {
			return err
		}
	}
	if err := op.parents.DeleteParent(ctx, parentID); err != nil {
		return err
	}
	op.acc.forget(parentID)

	op.logger.Debug("parent deleted", "parent_id", parentID, "children", len(seq))
	return nil
}
