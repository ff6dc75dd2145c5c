// Package engine implements the ordinal scoped ordering engine.
//
// The engine keeps a strict, gap-free order over the children of each
// parent and exposes move, append, remove and set-order primitives plus
// read-only navigation.
//
// ARCHITECTURE:
//
// Exclusive Scope Per Parent:
// Every mutation runs inside one store transaction on an Op. Before reading
// or writing any position under a parent, the Op takes the exclusive scope
// over the parent row and all sibling rows (store.Tx.LockScope). A move
// shifts every sibling between the old and new index, so nothing narrower
// than the whole scope is correct.
//
// Mutation Flow:
// 1. Resolve the child's parent
// 2. Lock and load the parent's order (accessor.load)
// 3. Compute the new order with the pure functions in package order
// 4. Validate it is a permutation of the loaded order (accessor.store)
// 5. Write changed positions and the parent's cache in the same transaction
//
// Host Composition:
// Engine.Do hands the caller an Op bound to one transaction. Hosts call
// engine operations and their own writes (Op.Tx) on it, and all of it
// commits or rolls back together. Lifecycle hooks (CreateChild,
// DeleteChild, DeleteParent) are explicit calls on the Op.
//
// CRITICAL PATTERNS:
//
// No Silent Repair:
// Stored positions that are not a permutation, or a proposed order that is
// not a permutation of the loaded one, fail with an invariant violation.
//
// No Internal Retry:
// Lock-wait timeouts surface as conflicts. Retrying is the host's decision.
//
// Cache In The Same Commit:
// The parent's order_cache is rewritten from the exact sequence that was
// persisted, inside the same transaction, never independently.
package engine
