package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordinal/internal/order"
)

func TestNavigation_NextPrevious(t *testing.T) {
	ctx := context.Background()
	e := setupTestEngine(t)
	seed(t, e, "p1", "A", "B", "C")

	tests := []struct {
		child    string
		next     string
		hasNext  bool
		prev     string
		hasPrev  bool
		position int
	}{
		{"A", "B", true, "", false, 0},
		{"B", "C", true, "A", true, 1},
		{"C", "", false, "B", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.child, func(t *testing.T) {
			next, ok, err := e.Next(ctx, tt.child)
			require.NoError(t, err)
			assert.Equal(t, tt.hasNext, ok)
			assert.Equal(t, tt.next, next)

			prev, ok, err := e.Previous(ctx, tt.child)
			require.NoError(t, err)
			assert.Equal(t, tt.hasPrev, ok)
			assert.Equal(t, tt.prev, prev)

			pos, err := e.PositionOf(ctx, tt.child)
			require.NoError(t, err)
			assert.Equal(t, tt.position, pos)
		})
	}
}

func TestNavigation_FollowsMoves(t *testing.T) {
	ctx := context.Background()
	e := setupTestEngine(t)
	seed(t, e, "p1", "A", "B", "C", "D")

	_, err := e.MoveTo(ctx, "D", 0)
	require.NoError(t, err)

	seq, err := e.Order(ctx, "p1")
	require.NoError(t, err)
	for i, id := range seq {
		pos, err := e.PositionOf(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i, pos)

		next, ok, err := e.Next(ctx, id)
		require.NoError(t, err)
		if i == len(seq)-1 {
			assert.False(t, ok)
		} else {
			assert.True(t, ok)
			assert.Equal(t, seq[i+1], next)
		}
	}
}

func TestNavigation_UnknownChild(t *testing.T) {
	ctx := context.Background()
	e := setupTestEngine(t)
	seed(t, e, "p1", "A")

	_, _, err := e.Next(ctx, "nope")
	assert.True(t, order.IsNotFound(err))
	_, _, err = e.Previous(ctx, "nope")
	assert.True(t, order.IsNotFound(err))
	_, err = e.PositionOf(ctx, "nope")
	assert.True(t, order.IsNotFound(err))
}

func TestNavigation_OrderFallsBackToPositions(t *testing.T) {
	ctx := context.Background()
	e := setupTestEngine(t)
	seed(t, e, "p1", "A", "B", "C")
	require.NoError(t, e.SetOrder(ctx, "p1", order.Sequence{"B", "C", "A"}))

	_, err := e.Store().DB().ExecContext(ctx, `UPDATE parents SET order_cache = NULL WHERE id = 'p1'`)
	require.NoError(t, err)

	seq, err := e.Order(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, order.Sequence{"B", "C", "A"}, seq)
}

func TestNavigation_OrderMissingParent(t *testing.T) {
	e := setupTestEngine(t)

	_, err := e.Order(context.Background(), "ghost")
	assert.True(t, order.IsNotFound(err))
}

func TestNavigation_EmptyParent(t *testing.T) {
	e := setupTestEngine(t)
	seed(t, e, "p1")

	seq, err := e.Order(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotNil(t, seq)
	assert.Empty(t, seq)
}
