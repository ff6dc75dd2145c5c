// Package harness runs ordering scenarios against a real engine.
//
// A scenario seeds parents, applies a flow of operations, and asserts on the
// resulting orders, navigation and integrity. Every scenario runs against a
// fresh in-memory SQLite store, so results are reproducible and traces can be
// compared against golden files.
//
// # Scenario Format
//
//	name: move_to_head
//	description: "Moving the last child to index 0 shifts the rest down"
//	setup:
//	  - parent: p1
//	    children: [A, B, C, D]
//	flow:
//	  - op: move
//	    child: D
//	    target: 0
//	    expect:
//	      order: [D, A, B, C]
//	  - op: move
//	    child: ghost
//	    target: 0
//	    expect:
//	      error: NOT_FOUND
//	assertions:
//	  - type: final_order
//	    parent: p1
//	    order: [D, A, B, C]
//	  - type: neighbors
//	    child: A
//	    previous: D
//	    next: B
//	  - type: integrity
//
// # Operations
//
//   - create_parent: parent
//   - delete_parent: parent (children are removed with it)
//   - append: parent, child
//   - remove: child
//   - move: child, target (clamped into range)
//   - set_order: parent, order
//
// # Assertion Types
//
//   - final_order: the parent's order equals order
//   - position: the child sits at position
//   - neighbors: the child's next and previous (empty means none)
//   - absent: the parent or child no longer exists
//   - integrity: every parent passes engine.Check
//   - trace_count: op appears exactly count times in the trace
package harness
