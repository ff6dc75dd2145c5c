// Package order provides the foundational types for ordinal: child rows,
// order sequences, the pure sequence algebra, and the engine's error kinds.
//
// This package imports nothing internal. The store and engine packages both
// build on it, which keeps the dependency graph acyclic.
//
// Key constraints:
//   - Positions are 0-based, dense, and unique within one parent
//   - A Sequence is the authoritative in-memory form of one parent's order
//   - Functions here never touch storage and never mutate their inputs
package order
