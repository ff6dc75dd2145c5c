package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordinal/internal/engine"
	"github.com/roach88/ordinal/internal/order"
)

func TestSeedParent(t *testing.T) {
	s, path := OpenStore(t)
	assert.NotEmpty(t, path)
	eng := engine.New(s)

	seq := SeedParent(t, eng, "p1", "A", "B", "C")
	assert.Equal(t, order.Sequence{"A", "B", "C"}, seq)

	got, err := eng.Order(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, seq, got)
}

func TestSeedParent_Empty(t *testing.T) {
	s, _ := OpenStore(t)
	eng := engine.New(s)

	seq := SeedParent(t, eng, "p1")
	assert.NotNil(t, seq)
	assert.Empty(t, seq)
}
