package order

// Clamp maps a requested target position into [0, count-1].
//
// Out-of-range targets are not an error: negative values clamp to the head
// and values past the end clamp to the tail, matching list insertion.
// For an empty scope Clamp returns 0.
func Clamp(target, count int) int {
	if target < 0 || count <= 0 {
		return 0
	}
	if target > count-1 {
		return count - 1
	}
	return target
}

// Move returns a new sequence with childID removed from its current index
// and reinserted at the clamped target. ok is false when childID is absent,
// in which case the input is returned unchanged.
func Move(seq Sequence, childID string, target int) (moved Sequence, ok bool) {
	from := seq.IndexOf(childID)
	if from < 0 {
		return seq, false
	}
	to := Clamp(target, len(seq))

	out := make(Sequence, 0, len(seq))
	for i, id := range seq {
		if i != from {
			out = append(out, id)
		}
	}
	out = append(out, "")
	copy(out[to+1:], out[to:])
	out[to] = childID
	return out, true
}

// Remove returns a new sequence without childID, compacting every later
// element down by one. ok is false when childID is absent.
func Remove(seq Sequence, childID string) (removed Sequence, ok bool) {
	idx := seq.IndexOf(childID)
	if idx < 0 {
		return seq, false
	}
	out := make(Sequence, 0, len(seq)-1)
	out = append(out, seq[:idx]...)
	out = append(out, seq[idx+1:]...)
	return out, true
}

// Append returns a new sequence with childID at the end.
func Append(seq Sequence, childID string) Sequence {
	out := make(Sequence, len(seq), len(seq)+1)
	copy(out, seq)
	return append(out, childID)
}

// Neighbor returns the id offset by delta from childID (delta=1 is next,
// delta=-1 is previous). found reports whether childID is in the sequence;
// ok reports whether a neighbor exists at that offset.
func Neighbor(seq Sequence, childID string, delta int) (id string, found, ok bool) {
	idx := seq.IndexOf(childID)
	if idx < 0 {
		return "", false, false
	}
	n := idx + delta
	if n < 0 || n >= len(seq) {
		return "", true, false
	}
	return seq[n], true, true
}

// ValidatePermutation checks that proposed is exactly a permutation of
// current: same length, no duplicates, no foreign ids.
// Returns an invariant violation describing the first problem found.
func ValidatePermutation(parentID string, current, proposed Sequence) error {
	if len(proposed) != len(current) {
		return NewInvariantViolation(parentID,
			"sequence has %d ids, parent has %d children", len(proposed), len(current))
	}

	owned := make(map[string]bool, len(current))
	for _, id := range current {
		owned[id] = true
	}

	seen := make(map[string]bool, len(proposed))
	for _, id := range proposed {
		if !owned[id] {
			return NewInvariantViolation(parentID, "id %q is not a child of this parent", id)
		}
		if seen[id] {
			return NewInvariantViolation(parentID, "id %q appears more than once", id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateRows checks that stored positions form a permutation of
// [0, len(rows)-1]. Rows may be in any order.
func ValidateRows(parentID string, rows []Row) error {
	taken := make([]string, len(rows))
	for _, r := range rows {
		if r.Position < 0 || r.Position >= len(rows) {
			return NewInvariantViolation(parentID,
				"child %q has position %d outside [0, %d]", r.ChildID, r.Position, len(rows)-1)
		}
		if prev := taken[r.Position]; prev != "" {
			return NewInvariantViolation(parentID,
				"children %q and %q share position %d", prev, r.ChildID, r.Position)
		}
		taken[r.Position] = r.ChildID
	}
	return nil
}
