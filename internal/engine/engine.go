package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/ordinal/internal/order"
	"github.com/roach88/ordinal/internal/store"
)

// Scope is the storage capability the accessor and Op mutate through.
//
// Engine itself is bound to *store.Store: Do always hands the Op the open
// *store.Tx as its Scope and Parents. The interfaces are the seam below
// that, so an Op can run over any other Scope implementation (the
// in-memory one in the accessor tests, for instance) without a store.
//
// All methods run inside one transaction. LockScope must take an exclusive
// lock over the parent and every sibling row before returning; the write
// methods must reject parents that were not locked first.
type Scope interface {
	LockScope(ctx context.Context, parentID string) ([]order.Row, error)
	ParentOf(ctx context.Context, childID string) (string, error)
	WritePositions(ctx context.Context, parentID string, updates []order.Row) error
	InsertChild(ctx context.Context, parentID, childID string, position int) error
	DeleteChild(ctx context.Context, parentID, childID string) error
	WriteOrderCache(ctx context.Context, parentID string, seq order.Sequence) error
}

// Parents is the capability to create and destroy parent rows.
// Lifecycle hooks need it; plain reorders do not.
type Parents interface {
	InsertParent(ctx context.Context, parentID string) error
	DeleteParent(ctx context.Context, parentID string) error
}

var (
	_ Scope   = (*store.Tx)(nil)
	_ Parents = (*store.Tx)(nil)
)

// Engine is the entry point for ordering operations.
//
// Thread-safety model:
//   - All methods are safe from any goroutine
//   - Mutations on the same parent serialize on the store's locks
//   - An Op must not be shared between goroutines
type Engine struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for mutation and conflict logs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over the given store.
// Without WithLogger, logs are discarded.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Do runs fn inside one transaction. Everything fn does through the Op,
// engine operations and host writes via Op.Tx alike, commits together when
// fn returns nil and rolls back otherwise.
//
// fn must not call the Engine's own one-shot or navigation methods: with a
// single-connection store they would wait on the connection fn holds.
func (e *Engine) Do(ctx context.Context, fn func(op *Op) error) error {
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		return fn(newOp(tx, tx, tx, e.logger))
	})
	if order.IsConflict(err) {
		e.logger.Warn("exclusive scope conflict", "error", err)
	}
	return err
}

// MoveTo moves childID to target in its own transaction.
// See Op.MoveTo.
func (e *Engine) MoveTo(ctx context.Context, childID string, target int) (order.Sequence, error) {
	var seq order.Sequence
	err := e.Do(ctx, func(op *Op) error {
		var err error
		seq, err = op.MoveTo(ctx, childID, target)
		return err
	})
	return seq, err
}

// Append adds childID at the end of parentID's order in its own transaction.
// See Op.Append.
func (e *Engine) Append(ctx context.Context, childID, parentID string) (order.Sequence, error) {
	var seq order.Sequence
	err := e.Do(ctx, func(op *Op) error {
		var err error
		seq, err = op.Append(ctx, childID, parentID)
		return err
	})
	return seq, err
}

// Remove deletes childID and compacts its siblings in its own transaction.
// See Op.Remove.
func (e *Engine) Remove(ctx context.Context, childID string) (order.Sequence, error) {
	var seq order.Sequence
	err := e.Do(ctx, func(op *Op) error {
		var err error
		seq, err = op.Remove(ctx, childID)
		return err
	})
	return seq, err
}

// SetOrder replaces parentID's whole order in its own transaction.
// See Op.SetOrder.
func (e *Engine) SetOrder(ctx context.Context, parentID string, seq order.Sequence) error {
	return e.Do(ctx, func(op *Op) error {
		return op.SetOrder(ctx, parentID, seq)
	})
}

// CreateParent inserts an empty parent in its own transaction.
func (e *Engine) CreateParent(ctx context.Context, parentID string) error {
	return e.Do(ctx, func(op *Op) error {
		return op.CreateParent(ctx, parentID)
	})
}

// DeleteParent removes a parent and all of its children in its own
// transaction. See Op.DeleteParent.
func (e *Engine) DeleteParent(ctx context.Context, parentID string) error {
	return e.Do(ctx, func(op *Op) error {
		return op.DeleteParent(ctx, parentID)
	})
}
