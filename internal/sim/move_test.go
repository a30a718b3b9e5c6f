package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/tilemap"
	"github.com/tilequest/worldsim/internal/world"
)

func beginAt(t *testing.T, f *fixture) *Region {
	t.Helper()
	r, err := BeginSim(f.deps, f.transient, world.CenteredChunkPoint(0, 0, 0), eightTiles(), 64)
	require.NoError(t, err)
	return r
}

func TestMoveEntitySlidesAlongBlockedAxis(t *testing.T) {
	f := newDiagonalWorld(t)
	require.NoError(t, f.deps.Tiles.SetTileValue(11, 3, 0, tilemap.TileBlocking))
	hero := f.add(t, entity.Sim{
		Type:   entity.TypeHero,
		Flags:  entity.FlagCollides,
		Width:  0.8 * tileSide,
		Height: 0.8 * tileSide,
	}, 10, 3)

	r := beginAt(t, f)
	e, ok := r.Get(hero)
	require.True(t, ok)
	start := e.P
	e.DP = mgl32.Vec2{0.5 * tileSide, 0.5 * tileSide}

	r.MoveEntity(e, mgl32.Vec2{}, MoveSpec{}, 1)

	assert.InDelta(t, start.X(), e.P.X(), 1e-5, "x motion into the wall is rejected")
	assert.InDelta(t, start.Y()+0.5*tileSide, e.P.Y(), 1e-4, "y motion still happens")
	assert.Zero(t, e.DP.X())
	assert.NotZero(t, e.DP.Y())
}

func TestMoveEntityStopsAtDiagonalWall(t *testing.T) {
	f := newDiagonalWorld(t)
	// (4, 4) blocks; walk east from (3, 4).
	hero := f.add(t, entity.Sim{Type: entity.TypeHero, Flags: entity.FlagCollides, Width: 1, Height: 1}, 3, 4)

	r := beginAt(t, f)
	e, _ := r.Get(hero)
	start := e.P
	for i := 0; i < 30; i++ {
		r.MoveEntity(e, mgl32.Vec2{1, 0}, MoveSpec{UnitMaxAccelVector: true, Speed: 50, Drag: 8}, 1.0/30)
	}
	assert.Less(t, e.P.X()-start.X(), float32(0.5*tileSide), "must not enter the blocking tile")
	assert.InDelta(t, start.Y(), e.P.Y(), 1e-5)
	require.NoError(t, EndSim(r))
	assert.Equal(t, int32(3), f.deps.World.TilePosition(f.deps.Entities.Get(hero).P).AbsTileX)
}

func TestMoveEntityWithoutCollisionPassesThrough(t *testing.T) {
	f := newDiagonalWorld(t)
	require.NoError(t, f.deps.Tiles.SetTileValue(11, 3, 0, tilemap.TileBlocking))
	ghost := f.add(t, entity.Sim{Type: entity.TypeFamiliar, Width: 1, Height: 1}, 10, 3)

	r := beginAt(t, f)
	e, _ := r.Get(ghost)
	start := e.P
	e.DP = mgl32.Vec2{tileSide, 0}
	moved := r.MoveEntity(e, mgl32.Vec2{}, MoveSpec{}, 1)
	assert.InDelta(t, tileSide, moved, 1e-5)
	assert.InDelta(t, start.X()+tileSide, e.P.X(), 1e-5)
}

func TestMoveEntityClampsAcceleration(t *testing.T) {
	f := newDiagonalWorld(t)
	idx := f.add(t, entity.Sim{Type: entity.TypeHero}, 10, 3)
	r := beginAt(t, f)
	e, _ := r.Get(idx)

	r.MoveEntity(e, mgl32.Vec2{3, 4}, MoveSpec{UnitMaxAccelVector: true, Speed: 10}, 0.1)
	assert.True(t, e.DP.ApproxEqualThreshold(mgl32.Vec2{0.6, 0.8}, 1e-5), "dp = %v", e.DP)
	assert.Equal(t, uint32(1), e.FacingDirection)
}

func TestMoveEntityAppliesDrag(t *testing.T) {
	f := newDiagonalWorld(t)
	idx := f.add(t, entity.Sim{Type: entity.TypeHero}, 10, 3)
	r := beginAt(t, f)
	e, _ := r.Get(idx)
	e.DP = mgl32.Vec2{10, 0}

	r.MoveEntity(e, mgl32.Vec2{}, MoveSpec{Drag: 2}, 0.1)
	assert.InDelta(t, 8, e.DP.X(), 1e-5)
	assert.Equal(t, uint32(0), e.FacingDirection)
}

func TestMoveEntityGravity(t *testing.T) {
	f := newDiagonalWorld(t)
	idx := f.add(t, entity.Sim{Type: entity.TypeHero}, 10, 3)
	r := beginAt(t, f)
	e, _ := r.Get(idx)
	e.DZ = 3

	r.MoveEntity(e, mgl32.Vec2{}, MoveSpec{}, 0.1)
	assert.Greater(t, e.Z, float32(0))
	for i := 0; i < 20; i++ {
		r.MoveEntity(e, mgl32.Vec2{}, MoveSpec{}, 0.1)
	}
	assert.Zero(t, e.Z)
	assert.Zero(t, e.DZ)
}
