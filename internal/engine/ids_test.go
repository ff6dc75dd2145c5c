package engine

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_Version(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 100

	ids := make(chan string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Generate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestFixedGenerator_Sequential(t *testing.T) {
	gen := NewFixedGenerator("c1", "c2", "c3")

	assert.Equal(t, "c1", gen.Generate())
	assert.Equal(t, "c2", gen.Generate())
	assert.Equal(t, "c3", gen.Generate())
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("only")
	gen.Generate()

	assert.PanicsWithValue(t, "FixedGenerator: all ids exhausted", func() {
		gen.Generate()
	})
}

func TestGenerators_SatisfyInterface(t *testing.T) {
	var _ IDGenerator = UUIDv7Generator{}
	var _ IDGenerator = NewFixedGenerator()
}
