package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name   string
		target int
		count  int
		want   int
	}{
		{"in range", 2, 4, 2},
		{"head", 0, 4, 0},
		{"tail", 3, 4, 3},
		{"past end", 99, 4, 3},
		{"negative", -5, 4, 0},
		{"empty scope", 3, 0, 0},
		{"single", 7, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.target, tt.count))
		})
	}
}

func TestMove(t *testing.T) {
	base := Sequence{"A", "B", "C", "D"}

	tests := []struct {
		name   string
		child  string
		target int
		want   Sequence
	}{
		{"forward", "A", 2, Sequence{"B", "C", "A", "D"}},
		{"to head", "D", 0, Sequence{"D", "A", "B", "C"}},
		{"clamped tail", "A", 99, Sequence{"B", "C", "D", "A"}},
		{"same index", "C", 2, Sequence{"A", "B", "C", "D"}},
		{"backward", "C", 1, Sequence{"A", "C", "B", "D"}},
		{"negative", "B", -1, Sequence{"B", "A", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Move(base, tt.child, tt.target)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, Sequence{"A", "B", "C", "D"}, base, "input must not be mutated")
}

func TestMove_ClampMatchesExplicitTail(t *testing.T) {
	base := Sequence{"A", "B", "C", "D"}

	clamped, ok := Move(base, "A", 99)
	require.True(t, ok)
	explicit, ok := Move(base, "A", 3)
	require.True(t, ok)

	assert.Equal(t, explicit, clamped)
}

func TestMove_Absent(t *testing.T) {
	base := Sequence{"A", "B"}
	got, ok := Move(base, "Z", 0)
	assert.False(t, ok)
	assert.Equal(t, base, got)
}

func TestRemove(t *testing.T) {
	got, ok := Remove(Sequence{"A", "B", "C", "D"}, "B")
	require.True(t, ok)
	assert.Equal(t, Sequence{"A", "C", "D"}, got)

	_, ok = Remove(Sequence{"A"}, "B")
	assert.False(t, ok)

	got, ok = Remove(Sequence{"A"}, "A")
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestAppend(t *testing.T) {
	base := Sequence{"A", "B"}
	got := Append(base, "C")
	assert.Equal(t, Sequence{"A", "B", "C"}, got)
	assert.Len(t, base, 2)

	assert.Equal(t, Sequence{"A"}, Append(nil, "A"))
}

func TestNeighbor(t *testing.T) {
	seq := Sequence{"A", "B", "C"}

	id, found, ok := Neighbor(seq, "A", 1)
	assert.True(t, found)
	assert.True(t, ok)
	assert.Equal(t, "B", id)

	_, found, ok = Neighbor(seq, "A", -1)
	assert.True(t, found)
	assert.False(t, ok)

	_, found, ok = Neighbor(seq, "C", 1)
	assert.True(t, found)
	assert.False(t, ok)

	_, found, _ = Neighbor(seq, "Z", 1)
	assert.False(t, found)
}

func TestValidatePermutation(t *testing.T) {
	current := Sequence{"A", "B", "C"}

	assert.NoError(t, ValidatePermutation("p", current, Sequence{"C", "A", "B"}))

	tests := []struct {
		name     string
		proposed Sequence
	}{
		{"short", Sequence{"A", "B"}},
		{"long", Sequence{"A", "B", "C", "D"}},
		{"duplicate", Sequence{"A", "A", "B"}},
		{"foreign", Sequence{"A", "B", "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePermutation("p", current, tt.proposed)
			require.Error(t, err)
			assert.True(t, IsInvariantViolation(err))
		})
	}
}

func TestValidateRows(t *testing.T) {
	ok := []Row{{"B", 1}, {"A", 0}, {"C", 2}}
	assert.NoError(t, ValidateRows("p", ok))
	assert.NoError(t, ValidateRows("p", nil))

	gap := []Row{{"A", 0}, {"B", 2}}
	assert.True(t, IsInvariantViolation(ValidateRows("p", gap)))

	dup := []Row{{"A", 0}, {"B", 0}}
	assert.True(t, IsInvariantViolation(ValidateRows("p", dup)))

	neg := []Row{{"A", -1}}
	assert.True(t, IsInvariantViolation(ValidateRows("p", neg)))
}

func TestFromRows(t *testing.T) {
	rows := []Row{{"C", 2}, {"A", 0}, {"B", 1}}
	assert.Equal(t, Sequence{"A", "B", "C"}, FromRows(rows))
	assert.Equal(t, "C", rows[0].ChildID, "input must not be reordered")
	assert.Equal(t, Sequence{}, FromRows(nil))
}

func TestSequence_Equal(t *testing.T) {
	assert.True(t, Sequence{"A", "B"}.Equal(Sequence{"A", "B"}))
	assert.False(t, Sequence{"A", "B"}.Equal(Sequence{"B", "A"}))
	assert.False(t, Sequence{"A"}.Equal(Sequence{"A", "B"}))
	assert.True(t, Sequence{}.Equal(nil))
}
