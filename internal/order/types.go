package order

import "sort"

// Row is one child's stored position within its parent.
type Row struct {
	ChildID  string `json:"child_id"`
	Position int    `json:"position"`
}

// Sequence is the ordered list of child ids for one parent.
// Index i holds the child stored at position i.
type Sequence []string

// FromRows sorts rows by position and returns their child ids.
// The input slice is not modified.
func FromRows(rows []Row) Sequence {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	seq := make(Sequence, len(sorted))
	for i, r := range sorted {
		seq[i] = r.ChildID
	}
	return seq
}

// Clone returns an independent copy of the sequence.
// A nil sequence clones to an empty, non-nil one.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// IndexOf returns the index of childID, or -1 when absent.
func (s Sequence) IndexOf(childID string) int {
	for i, id := range s {
		if id == childID {
			return i
		}
	}
	return -1
}

// Equal reports whether two sequences hold the same ids in the same order.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
