package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/ordinal/internal/order"
	"github.com/roach88/ordinal/internal/store"
)

// Op is a handle on one open transaction. It is only valid inside the
// function passed to Engine.Do.
type Op struct {
	tx      *store.Tx
	acc     *accessor
	scope   Scope
	parents Parents
	logger  *slog.Logger
}

func newOp(tx *store.Tx, scope Scope, parents Parents, logger *slog.Logger) *Op {
	return &Op{
		tx:      tx,
		acc:     newAccessor(scope),
		scope:   scope,
		parents: parents,
		logger:  logger,
	}
}

// Tx returns the store transaction behind this Op, for host writes that
// must commit together with an engine operation (e.g. TouchParent).
func (op *Op) Tx() *store.Tx {
	return op.tx
}

// Order takes the exclusive scope on parentID and returns its order.
// Returns order.ParentNotFound if the parent does not exist.
func (op *Op) Order(ctx context.Context, parentID string) (order.Sequence, error) {
	return op.acc.load(ctx, parentID)
}

// lockChild resolves childID's parent and locks that parent's scope.
// The child is looked up again in the locked order, so a child removed
// between the two steps is reported as not found.
func (op *Op) lockChild(ctx context.Context, childID string) (parentID string, seq order.Sequence, err error) {
	parentID, err = op.scope.ParentOf(ctx, childID)
	if err != nil {
		return "", nil, err
	}
	seq, err = op.acc.load(ctx, parentID)
	if err != nil {
		return "", nil, err
	}
	if seq.IndexOf(childID) < 0 {
		return "", nil, order.ChildNotFound(parentID, childID)
	}
	return parentID, seq, nil
}

// requireID rejects empty ids. An empty id can never name a stored row.
func requireID(parentID, kind, id string) error {
	if id == "" {
		return order.NewInvariantViolation(parentID, "%s id must not be empty", kind)
	}
	return nil
}
