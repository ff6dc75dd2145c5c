package engine

import (
	"context"

	"github.com/roach88/ordinal/internal/order"
)

// MoveTo moves childID to target within its parent's order and returns the
// new order.
//
// target is clamped into [0, count-1]; a negative target moves the child to
// the head and a target past the end moves it to the tail. Moving a child to
// the index it already holds writes nothing.
//
// Returns order.ChildNotFound if the child does not exist, including when it
// was deleted by a transaction that committed while this one waited for the
// lock.
func (op *Op) MoveTo(ctx context.Context, childID string, target int) (order.Sequence, error) {
	parentID, cur, err := op.lockChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	next, _ := order.Move(cur, childID, target)
	if next.Equal(cur) {
		return cur, nil
	}

	if err := op.acc.store(ctx, parentID, next); err != nil {
		return nil, err
	}
	op.logger.Debug("child moved",
		"parent_id", parentID,
		"child_id", childID,
		"from", cur.IndexOf(childID),
		"to", next.IndexOf(childID))
	return next, nil
}

// Append creates childID at the end of parentID's order and returns the new
// order.
//
// Returns order.ParentNotFound if the parent does not exist and an invariant
// violation if either id is empty or a child with that id already exists
// under any parent.
func (op *Op) Append(ctx context.Context, childID, parentID string) (order.Sequence, error) {
	if err := requireID(parentID, "parent", parentID); err != nil {
		return nil, err
	}
	if err := requireID(parentID, "child", childID); err != nil {
		return nil, err
	}
	if _, err := op.acc.load(ctx, parentID); err != nil {
		return nil, err
	}

	next, err := op.acc.insert(ctx, parentID, childID)
	if err != nil {
		return nil, err
	}
	op.logger.Debug("child appended",
		"parent_id", parentID,
		"child_id", childID,
		"position", len(next)-1)
	return next, nil
}

// Remove deletes childID and compacts the siblings after it, returning the
// parent's new order.
func (op *Op) Remove(ctx context.Context, childID string) (order.Sequence, error) {
	parentID, cur, err := op.lockChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	next, err := op.acc.delete(ctx, parentID, childID)
	if err != nil {
		return nil, err
	}
	op.logger.Debug("child removed",
		"parent_id", parentID,
		"child_id", childID,
		"position", cur.IndexOf(childID))
	return next, nil
}

// SetOrder replaces parentID's order with seq. seq must name every current
// child exactly once; anything else is an invariant violation and nothing
// is written.
func (op *Op) SetOrder(ctx context.Context, parentID string, seq order.Sequence) error {
	cur, err := op.acc.load(ctx, parentID)
	if err != nil {
		return err
	}
	if seq.Equal(cur) {
		return nil
	}

	if err := op.acc.store(ctx, parentID, seq.Clone()); err != nil {
		return err
	}
	op.logger.Debug("order replaced", "parent_id", parentID, "children", len(seq))
	return nil
}
