package tilemap

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequest/worldsim/internal/core/arena"
)

func newTestMap(t *testing.T) (*TileMap, *arena.Arena) {
	t.Helper()
	a := arena.NewSized("tiles", 1<<20)
	m, err := New(a, Config{
		ChunkDim:         16,
		ChunkCountX:      4,
		ChunkCountY:      4,
		ChunkCountZ:      2,
		TileSideInMeters: 1.4,
	})
	require.NoError(t, err)
	return m, a
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"non power of two", Config{ChunkDim: 24, ChunkCountX: 1, ChunkCountY: 1, ChunkCountZ: 1, TileSideInMeters: 1}},
		{"zero count", Config{ChunkDim: 16, ChunkCountX: 0, ChunkCountY: 1, ChunkCountZ: 1, TileSideInMeters: 1}},
		{"zero tile side", Config{ChunkDim: 16, ChunkCountX: 1, ChunkCountY: 1, ChunkCountZ: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(arena.NewSized("tiles", 4096), tt.cfg)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}

func TestLazyMaterialization(t *testing.T) {
	m, a := newTestMap(t)
	usedAfterInit := a.Used()

	_, ok := m.GetTileValue(3, 3, 0)
	assert.False(t, ok, "unwritten chunk must read as absent")
	assert.Equal(t, 0, m.MaterializedChunks())

	require.NoError(t, m.SetTileValue(3, 3, 0, TileBlocking))
	assert.Equal(t, 1, m.MaterializedChunks())
	assert.Greater(t, a.Used(), usedAfterInit)

	v, ok := m.GetTileValue(3, 3, 0)
	require.True(t, ok)
	assert.Equal(t, TileBlocking, v)

	v, ok = m.GetTileValue(4, 3, 0)
	require.True(t, ok)
	assert.Equal(t, TileEmpty, v, "same chunk, untouched tile")

	used := a.Used()
	require.NoError(t, m.SetTileValue(15, 15, 0, TileDoor))
	assert.Equal(t, used, a.Used(), "second write in a chunk must not allocate")
}

func TestOutOfGrid(t *testing.T) {
	m, _ := newTestMap(t)

	tests := []struct {
		name    string
		x, y, z int32
	}{
		{"negative x", -1, 0, 0},
		{"past x", 64, 0, 0},
		{"past y", 0, 64, 0},
		{"past z", 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.SetTileValue(tt.x, tt.y, tt.z, TileBlocking)
			assert.True(t, errors.Is(err, ErrOutOfGrid))
			_, ok := m.GetTileValue(tt.x, tt.y, tt.z)
			assert.False(t, ok)
		})
	}
}

func TestIsPointEmpty(t *testing.T) {
	m, _ := newTestMap(t)
	require.NoError(t, m.SetTileValue(1, 1, 0, TileBlocking))
	require.NoError(t, m.SetTileValue(2, 1, 0, TileStairsUp))

	assert.False(t, m.IsPointEmpty(Position{AbsTileX: 1, AbsTileY: 1}))
	assert.True(t, m.IsPointEmpty(Position{AbsTileX: 2, AbsTileY: 1}))
	assert.True(t, m.IsPointEmpty(Position{AbsTileX: 0, AbsTileY: 0}))
	assert.False(t, m.IsPointEmpty(Position{AbsTileX: 20, AbsTileY: 20}), "unmaterialized chunk is blocked")
	assert.False(t, m.IsPointEmpty(Position{AbsTileX: -3, AbsTileY: 0}), "off the map is blocked")
}

func TestRecanonicalizeKeepsOffsetInTile(t *testing.T) {
	m, _ := newTestMap(t)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		p := Position{
			AbsTileX: rng.Int31n(1 << 16),
			AbsTileY: rng.Int31n(1 << 16),
			Offset:   mgl32.Vec2{(rng.Float32()*2 - 1) * 14, (rng.Float32()*2 - 1) * 14},
		}
		once := m.Recanonicalize(p)
		assert.True(t, m.IsCanonical(once))
		assert.Equal(t, once, m.Recanonicalize(once))
	}
}

func TestOffsetAndSubtract(t *testing.T) {
	m, _ := newTestMap(t)
	base := Position{AbsTileX: 10, AbsTileY: 5}
	moved := m.Offset(base, mgl32.Vec2{2.8, -1.4})

	assert.Equal(t, int32(12), moved.AbsTileX)
	assert.Equal(t, int32(4), moved.AbsTileY)
	assert.True(t, moved.Offset.ApproxEqualThreshold(mgl32.Vec2{}, 1e-5))

	d := m.Subtract(moved, base)
	assert.True(t, d.ApproxEqualThreshold(mgl32.Vec2{2.8, -1.4}, 1e-5))
	assert.False(t, AreOnSameTile(base, moved))
}
