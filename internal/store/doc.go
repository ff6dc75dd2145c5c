// Package store provides the transactional Position Store behind ordinal.
//
// The store owns durable storage of (parent_id, child_id, position) tuples
// and the parent's denormalized order cache:
//   - parents: id, order_cache (JSON array of child ids), revision
//   - children: id, parent_id, position with UNIQUE(parent_id, position)
//
// # Critical Patterns
//
// Exclusive scope:
//   - Every write happens inside Store.WithTx on a *Tx
//   - Tx.LockScope takes the parent row and all sibling rows with a locking
//     read and drains the result before returning
//   - Writes for a parent that was not locked in the same Tx are rejected
//
// Position writes:
//   - Changed rows are first parked at negative positions, then written to
//     their final index, so UNIQUE(parent_id, position) holds at every
//     statement boundary
//
// No cascades:
//   - children.parent_id has no ON DELETE CASCADE. Removing a parent without
//     removing its children through the engine fails on the foreign key.
//
// # Dialects
//
// SQLite (mattn/go-sqlite3):
//   - Transactions begin IMMEDIATE, so the write lock is held from BEGIN
//   - WAL mode, synchronous=NORMAL, foreign_keys=ON
//   - busy_timeout is the lock-wait timeout; SQLITE_BUSY surfaces as a conflict
//
// PostgreSQL (jackc/pgx/v5):
//   - SET LOCAL lock_timeout at the start of each transaction
//   - SELECT ... FOR UPDATE on the parent row and on every sibling row
//   - SQLSTATE 55P03, 40001 and 40P01 surface as conflicts
package store
