package structures

import (
	"testing"

	"github.com/kailuowang/flip/cmap"
	"github.com/kailuowang/flip/hcounter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStructure(t *testing.T, seed int64) Structure {
	t.Helper()
	c, err := cmap.NewUniform(10, 0, 10)
	require.NoError(t, err)
	return Structure{Cmap: c, Counter: hcounter.New(10, 100, 2, seed)}
}

func TestStructures_StartsAtOne(t *testing.T) {
	s := New(3, newStructure(t, 1))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 3, s.Depth())
}

func TestStructures_GrowsUntilDepthThenEvicts(t *testing.T) {
	s := New(2, newStructure(t, 1))

	evicted, ok := s.Push(newStructure(t, 2))
	assert.False(t, ok)
	assert.Equal(t, Structure{}, evicted)
	assert.Equal(t, 2, s.Len())

	oldest := s.At(1)
	evicted, ok = s.Push(newStructure(t, 3))
	assert.True(t, ok)
	assert.Same(t, oldest.Cmap, evicted.Cmap)
	assert.Equal(t, 2, s.Len())
}

func TestStructures_SizeNeverExceedsDepth(t *testing.T) {
	s := New(3, newStructure(t, 0))
	for i := 0; i < 20; i++ {
		s.Push(newStructure(t, int64(i)))
		assert.LessOrEqual(t, s.Len(), 3)
	}
	assert.Equal(t, 3, s.Len())
}

func TestStructures_YoungIsMostRecentlyPushed(t *testing.T) {
	s := New(3, newStructure(t, 1))
	fresh := newStructure(t, 2)
	s.Push(fresh)
	assert.Same(t, fresh.Cmap, s.Young().Cmap)
}
