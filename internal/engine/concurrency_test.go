package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/ordinal/internal/order"
)

type move struct {
	child  string
	target int
}

// serial applies moves one after another to start.
func serial(start order.Sequence, moves ...move) order.Sequence {
	seq := start.Clone()
	for _, m := range moves {
		seq, _ = order.Move(seq, m.child, m.target)
	}
	return seq
}

func TestConcurrency_TwoMovesMatchASerialOutcome(t *testing.T) {
	start := order.Sequence{"A", "B", "C", "D", "E"}
	m1 := move{"A", 3}
	m2 := move{"E", 1}
	outcomes := []order.Sequence{serial(start, m1, m2), serial(start, m2, m1)}

	for i := 0; i < 10; i++ {
		t.Run(fmt.Sprintf("run-%d", i), func(t *testing.T) {
			ctx := context.Background()
			e := setupTestEngine(t)
			seed(t, e, "p1", start...)

			g, gctx := errgroup.WithContext(ctx)
			for _, m := range []move{m1, m2} {
				g.Go(func() error {
					_, err := e.MoveTo(gctx, m.child, m.target)
					return err
				})
			}
			require.NoError(t, g.Wait())

			got := requireConsistent(t, e, "p1")
			assert.Contains(t, outcomes, got)
		})
	}
}

func TestConcurrency_ManyWritersKeepInvariant(t *testing.T) {
	ctx := context.Background()
	e := setupTestEngine(t)
	children := order.Sequence{"A", "B", "C", "D", "E", "F"}
	seed(t, e, "p1", children...)
	seed(t, e, "p2", "X", "Y", "Z")

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < 8; w++ {
		rng := rand.New(rand.NewSource(int64(w)))
		g.Go(func() error {
			for i := 0; i < 20; i++ {
				child := children[rng.Intn(len(children))]
				if _, err := e.MoveTo(gctx, child, rng.Intn(8)-1); err != nil {
					return err
				}
				if _, err := e.MoveTo(gctx, "Z", rng.Intn(3)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	got := requireConsistent(t, e, "p1")
	assert.ElementsMatch(t, children, got)
	assert.ElementsMatch(t, order.Sequence{"X", "Y", "Z"}, requireConsistent(t, e, "p2"))
}

func TestConcurrency_MoveRacingRemove(t *testing.T) {
	ctx := context.Background()
	e := setupTestEngine(t)
	seed(t, e, "p1", "A", "B", "C")

	g, gctx := errgroup.WithContext(ctx)
	var moveErr error
	g.Go(func() error {
		_, moveErr = e.MoveTo(gctx, "B", 0)
		return nil
	})
	g.Go(func() error {
		_, err := e.Remove(gctx, "B")
		return err
	})
	require.NoError(t, g.Wait())

	// Either the move ran first or it saw the child already gone.
	if moveErr != nil {
		assert.True(t, order.IsNotFound(moveErr))
	}
	assert.Equal(t, order.Sequence{"A", "C"}, requireConsistent(t, e, "p1"))
}

// TestInvariant_RandomOperations drives random mutations against the engine
// and an in-memory model and checks both agree after every step.
func TestInvariant_RandomOperations(t *testing.T) {
	ctx := context.Background()
	e := setupTestEngine(t)
	seed(t, e, "p1")

	rng := rand.New(rand.NewSource(42))
	model := order.Sequence{}
	next := 0

	for step := 0; step < 200; step++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(model) == 0:
			id := fmt.Sprintf("c%03d", next)
			next++
			_, err := e.Append(ctx, id, "p1")
			require.NoError(t, err)
			model = order.Append(model, id)

		case op == 1:
			id := model[rng.Intn(len(model))]
			_, err := e.Remove(ctx, id)
			require.NoError(t, err)
			model, _ = order.Remove(model, id)

		case op == 2:
			perm := model.Clone()
			rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
			require.NoError(t, e.SetOrder(ctx, "p1", perm))
			model = perm

		default:
			id := model[rng.Intn(len(model))]
			target := rng.Intn(len(model)+4) - 2
			_, err := e.MoveTo(ctx, id, target)
			require.NoError(t, err)
			model, _ = order.Move(model, id, target)
		}

		require.Equal(t, model, requireConsistent(t, e, "p1"), "step %d", step)
	}
}
