package engine

import (
	"context"
	"fmt"

	"github.com/roach88/ordinal/internal/order"
)

// Navigation reads run outside any transaction and take no lock. Each reads
// a single committed state.

// Order returns parentID's children in position order. The cached order is
// used when present; otherwise the children are sorted by position.
// Returns order.ParentNotFound if the parent does not exist.
func (e *Engine) Order(ctx context.Context, parentID string) (order.Sequence, error) {
	p, err := e.store.ReadParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		return p.Cache, nil
	}

	rows, err := e.store.ReadChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	return order.FromRows(rows), nil
}

// Next returns the sibling after childID. ok is false when childID is last.
// Returns order.ChildNotFound if the child does not exist.
func (e *Engine) Next(ctx context.Context, childID string) (id string, ok bool, err error) {
	return e.neighbor(ctx, childID, 1)
}

// Previous returns the sibling before childID. ok is false when childID is
// first. Returns order.ChildNotFound if the child does not exist.
func (e *Engine) Previous(ctx context.Context, childID string) (id string, ok bool, err error) {
	return e.neighbor(ctx, childID, -1)
}

func (e *Engine) neighbor(ctx context.Context, childID string, delta int) (string, bool, error) {
	id, found, ok, err := e.store.ReadNeighbor(ctx, childID, delta)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, order.ChildNotFound("", childID)
	}
	return id, ok, nil
}

// PositionOf returns childID's zero-based position within its parent.
// Returns order.ChildNotFound if the child does not exist.
func (e *Engine) PositionOf(ctx context.Context, childID string) (int, error) {
	c, err := e.store.ReadChild(ctx, childID)
	if err != nil {
		return 0, err
	}
	return c.Position, nil
}
