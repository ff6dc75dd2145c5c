package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/ordinal/internal/order"
)

// Tx is one all-or-nothing unit of work against the store.
// A Tx is not safe for concurrent use.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
	locked  map[string]bool
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; fn's error is returned unmodified.
//
// A lock-wait timeout while beginning or committing surfaces as a conflict.
// On SQLite that includes waiting longer than the lock timeout for the
// single pooled connection held by another transaction in this process.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()
	defer sqlTx.Rollback() // No-op if committed

	if s.dialect == DialectPostgres {
		// SET cannot take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err := sqlTx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	tx := &Tx{
		tx:      sqlTx,
		dialect: s.dialect,
		locked:  make(map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if isLockTimeout(err) {
			return order.NewConflict("", err)
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// begin starts a transaction and returns a func that gives back its
// connection. release must run after the transaction ends.
func (s *Store) begin(ctx context.Context) (*sql.Tx, func(), error) {
	if s.dialect != DialectSQLite {
		sqlTx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, beginError(err)
		}
		return sqlTx, func() {}, nil
	}

	// busy_timeout never applies while queued on the pool, so the wait for
	// the connection gets its own deadline.
	waitCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	conn, err := s.db.Conn(waitCtx)
	cancel()
	if err != nil {
		return nil, nil, beginError(err)
	}

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		conn.Close()
		return nil, nil, beginError(err)
	}
	return sqlTx, func() { conn.Close() }, nil
}

func beginError(err error) error {
	if isLockTimeout(err) {
		return order.NewConflict("", err)
	}
	return fmt.Errorf("begin tx: %w", err)
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.rebind(query), args...)
}

// LockScope acquires the exclusive scope over a parent: the parent row and
// every current child row. The locking reads are fully drained before
// LockScope returns, so the locks are held once it succeeds.
//
// Returns the children's rows ordered by position, order.ParentNotFound if
// the parent does not exist, or a conflict if the lock wait timed out.
func (t *Tx) LockScope(ctx context.Context, parentID string) ([]order.Row, error) {
	var id string
	err := t.tx.QueryRowContext(ctx,
		t.dialect.rebind(`SELECT id FROM parents WHERE id = ?`+t.dialect.forUpdate()),
		parentID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ParentNotFound(parentID)
	}
	if err != nil {
		if isLockTimeout(err) {
			return nil, order.NewConflict(parentID, err)
		}
		return nil, fmt.Errorf("lock scope: parent: %w", err)
	}

	rows, err := t.tx.QueryContext(ctx,
		t.dialect.rebind(`
			SELECT id, position FROM children
			WHERE parent_id = ?
			ORDER BY position ASC`+t.dialect.forUpdate()),
		parentID,
	)
	if err != nil {
		if isLockTimeout(err) {
			return nil, order.NewConflict(parentID, err)
		}
		return nil, fmt.Errorf("lock scope: children: %w", err)
	}
	defer rows.Close()

	result := []order.Row{}
	for rows.Next() {
		var r order.Row
		if err := rows.Scan(&r.ChildID, &r.Position); err != nil {
			return nil, fmt.Errorf("lock scope: scan: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		if isLockTimeout(err) {
			return nil, order.NewConflict(parentID, err)
		}
		return nil, fmt.Errorf("lock scope: iterate: %w", err)
	}

	t.locked[parentID] = true
	return result, nil
}

// ParentOf returns the parent that currently owns childID.
// Returns order.ChildNotFound if the child does not exist.
func (t *Tx) ParentOf(ctx context.Context, childID string) (string, error) {
	var parentID string
	err := t.tx.QueryRowContext(ctx,
		t.dialect.rebind(`SELECT parent_id FROM children WHERE id = ?`),
		childID,
	).Scan(&parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", order.ChildNotFound("", childID)
	}
	if err != nil {
		return "", fmt.Errorf("parent of: %w", err)
	}
	return parentID, nil
}

func (t *Tx) requireLocked(parentID string) error {
	if !t.locked[parentID] {
		return order.NewInvariantViolation(parentID, "write outside exclusive scope")
	}
	return nil
}

// WritePositions persists the given positions for children of a locked
// parent. Rows not listed keep their position; the caller guarantees the
// combined result is a permutation.
//
// Listed rows are parked at negative positions first so that
// UNIQUE(parent_id, position) is never violated between statements.
func (t *Tx) WritePositions(ctx context.Context, parentID string, updates []order.Row) error {
	if err := t.requireLocked(parentID); err != nil {
		return err
	}

	for i, u := range updates {
		if err := t.setPosition(ctx, parentID, u.ChildID, -1-i); err != nil {
			return fmt.Errorf("write positions: park: %w", err)
		}
	}
	for _, u := range updates {
		if err := t.setPosition(ctx, parentID, u.ChildID, u.Position); err != nil {
			return fmt.Errorf("write positions: %w", err)
		}
	}
	return nil
}

func (t *Tx) setPosition(ctx context.Context, parentID, childID string, position int) error {
	result, err := t.exec(ctx,
		`UPDATE children SET position = ? WHERE id = ? AND parent_id = ?`,
		position, childID, parentID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return order.ChildNotFound(parentID, childID)
	}
	return nil
}

// InsertChild creates a child row at the given position of a locked parent.
// Returns an invariant violation if the id or the position is already taken.
func (t *Tx) InsertChild(ctx context.Context, parentID, childID string, position int) error {
	if err := t.requireLocked(parentID); err != nil {
		return err
	}

	_, err := t.exec(ctx,
		`INSERT INTO children (id, parent_id, position) VALUES (?, ?, ?)`,
		childID, parentID, position,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.NewInvariantViolation(parentID,
				"child %q or position %d already exists", childID, position)
		}
		return fmt.Errorf("insert child: %w", err)
	}
	return nil
}

// DeleteChild removes a child row of a locked parent. It does not touch
// sibling positions; compaction is the caller's job in the same Tx.
func (t *Tx) DeleteChild(ctx context.Context, parentID, childID string) error {
	if err := t.requireLocked(parentID); err != nil {
		return err
	}

	result, err := t.exec(ctx,
		`DELETE FROM children WHERE id = ? AND parent_id = ?`,
		childID, parentID,
	)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete child: rows affected: %w", err)
	}
	if n != 1 {
		return order.ChildNotFound(parentID, childID)
	}
	return nil
}

// WriteOrderCache replaces a locked parent's cached order.
func (t *Tx) WriteOrderCache(ctx context.Context, parentID string, seq order.Sequence) error {
	if err := t.requireLocked(parentID); err != nil {
		return err
	}

	cache, err := marshalCache(seq)
	if err != nil {
		return fmt.Errorf("write order cache: %w", err)
	}
	if _, err := t.exec(ctx,
		`UPDATE parents SET order_cache = ? WHERE id = ?`,
		cache, parentID,
	); err != nil {
		return fmt.Errorf("write order cache: %w", err)
	}
	return nil
}

// ReadOrderCache returns a parent's cached order inside the transaction.
// cached is false when the column is NULL.
func (t *Tx) ReadOrderCache(ctx context.Context, parentID string) (seq order.Sequence, cached bool, err error) {
	var cache sql.NullString
	err = t.tx.QueryRowContext(ctx,
		t.dialect.rebind(`SELECT order_cache FROM parents WHERE id = ?`),
		parentID,
	).Scan(&cache)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, order.ParentNotFound(parentID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("read order cache: %w", err)
	}
	if !cache.Valid {
		return nil, false, nil
	}
	seq, err = unmarshalCache(cache.String)
	if err != nil {
		return nil, false, fmt.Errorf("read order cache: %w", err)
	}
	return seq, true, nil
}

// InsertParent creates a parent with an empty cached order.
// Returns an invariant violation if the id is taken.
func (t *Tx) InsertParent(ctx context.Context, parentID string) error {
	_, err := t.exec(ctx,
		`INSERT INTO parents (id, order_cache, revision) VALUES (?, ?, 0)`,
		parentID, "[]",
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.NewInvariantViolation(parentID, "parent already exists")
		}
		return fmt.Errorf("insert parent: %w", err)
	}
	return nil
}

// DeleteParent removes a locked parent row. Its children must already be
// gone; otherwise the foreign key rejects the delete.
func (t *Tx) DeleteParent(ctx context.Context, parentID string) error {
	if err := t.requireLocked(parentID); err != nil {
		return err
	}

	if _, err := t.exec(ctx, `DELETE FROM parents WHERE id = ?`, parentID); err != nil {
		return fmt.Errorf("delete parent: %w", err)
	}
	delete(t.locked, parentID)
	return nil
}

// TouchParent bumps a parent's revision. Hosts call it next to an engine
// mutation to record "modified" metadata in the same transaction.
func (t *Tx) TouchParent(ctx context.Context, parentID string) error {
	result, err := t.exec(ctx,
		`UPDATE parents SET revision = revision + 1 WHERE id = ?`,
		parentID,
	)
	if err != nil {
		return fmt.Errorf("touch parent: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch parent: rows affected: %w", err)
	}
	if n != 1 {
		return order.ParentNotFound(parentID)
	}
	return nil
}

// marshalCache encodes a sequence as a JSON array. A nil sequence encodes
// as [] so the column never holds "null".
func marshalCache(seq order.Sequence) (string, error) {
	if seq == nil {
		seq = order.Sequence{}
	}
	data, err := json.Marshal([]string(seq))
	if err != nil {
		return "", fmt.Errorf("marshal cache: %w", err)
	}
	return string(data), nil
}

// unmarshalCache decodes the order_cache column.
func unmarshalCache(data string) (order.Sequence, error) {
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal cache: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return order.Sequence(ids), nil
}
