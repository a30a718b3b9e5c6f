package world

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestMapIntoChunkSpaceRoundTrip(t *testing.T) {
	w := newTestWorld(t, 16)
	rng := rand.New(rand.NewSource(3))
	side := w.ChunkSideInMeters()

	for i := 0; i < 5000; i++ {
		p := w.Recanonicalize(Position{
			ChunkX: rng.Int31n(2*ChunkSafeMargin-4) - ChunkSafeMargin + 2,
			ChunkY: rng.Int31n(2*ChunkSafeMargin-4) - ChunkSafeMargin + 2,
			Offset: mgl32.Vec2{(rng.Float32() - 0.5) * side, (rng.Float32() - 0.5) * side},
		})
		d := mgl32.Vec2{(rng.Float32()*2 - 1) * side, (rng.Float32()*2 - 1) * side}

		moved := w.MapIntoChunkSpace(p, d)
		assert.True(t, w.IsCanonical(moved))
		got := w.Subtract(moved, p).DXY
		assert.True(t, got.ApproxEqualThreshold(d, 1e-3), "round trip of %v gave %v", d, got)
	}
}

func TestChunkPositionFromTilePosition(t *testing.T) {
	w := newTestWorld(t, 16)
	tests := []struct {
		tile   int32
		chunk  int32
		offset float32
	}{
		{0, 0, -7.5 * 1.4},
		{8, 0, 0.5 * 1.4},
		{15, 0, 7.5 * 1.4},
		{16, 1, -7.5 * 1.4},
		{-1, -1, 7.5 * 1.4},
	}
	for _, tt := range tests {
		p := w.ChunkPositionFromTilePosition(tt.tile, 0, 0, mgl32.Vec2{})
		assert.Equal(t, tt.chunk, p.ChunkX, "tile %d", tt.tile)
		assert.InDelta(t, tt.offset, p.Offset.X(), 1e-4, "tile %d", tt.tile)

		tp := w.TilePosition(p)
		assert.Equal(t, tt.tile, tp.AbsTileX)
		assert.InDelta(t, 0, tp.Offset.X(), 1e-4)
	}
}

func TestTilePositionTracksOffset(t *testing.T) {
	w := newTestWorld(t, 16)
	p := w.ChunkPositionFromTilePosition(15, 4, 0, mgl32.Vec2{0.6, 0})
	tp := w.TilePosition(p)
	assert.Equal(t, int32(15), tp.AbsTileX)
	assert.Equal(t, int32(4), tp.AbsTileY)
	assert.InDelta(t, 0.6, tp.Offset.X(), 1e-4)

	p = w.MapIntoChunkSpace(p, mgl32.Vec2{0.2, 0})
	assert.Equal(t, int32(1), p.ChunkX)
	assert.Equal(t, int32(16), w.TilePosition(p).AbsTileX)
}

func TestSubtractAcrossChunks(t *testing.T) {
	w := newTestWorld(t, 16)
	a := CenteredChunkPoint(5, -2, 1)
	b := CenteredChunkPoint(3, 1, 0)
	d := w.Subtract(a, b)
	side := w.ChunkSideInMeters()
	assert.InDelta(t, 2*side, d.DXY.X(), 1e-4)
	assert.InDelta(t, -3*side, d.DXY.Y(), 1e-4)
	assert.InDelta(t, side, d.DZ, 1e-4)
	assert.False(t, NullPosition().IsValid())
}
