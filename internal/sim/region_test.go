package sim

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequest/worldsim/internal/core/arena"
	"github.com/tilequest/worldsim/internal/core/event"
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/mathx"
	"github.com/tilequest/worldsim/internal/tilemap"
	"github.com/tilequest/worldsim/internal/world"
)

const tileSide = 1.4

type fixture struct {
	deps      Deps
	permanent *arena.Arena
	transient *arena.Arena
}

// newDiagonalWorld builds a 4x4-chunk, 256x256-tile map with blocking tiles
// where x == y and y is even.
func newDiagonalWorld(t *testing.T) *fixture {
	t.Helper()
	permanent := arena.NewSized("permanent", 4<<20)
	w, err := world.New(permanent, world.Config{TileSideInMeters: tileSide, TilesPerChunk: 16, BucketCount: 256}, nil)
	require.NoError(t, err)
	tiles, err := tilemap.New(permanent, tilemap.Config{
		ChunkDim:         64,
		ChunkCountX:      4,
		ChunkCountY:      4,
		ChunkCountZ:      1,
		TileSideInMeters: tileSide,
	})
	require.NoError(t, err)
	for y := int32(0); y < 256; y++ {
		for x := int32(0); x < 256; x++ {
			v := tilemap.TileEmpty
			if x == y && y%2 == 0 {
				v = tilemap.TileBlocking
			}
			require.NoError(t, tiles.SetTileValue(x, y, 0, v))
		}
	}
	store, err := entity.NewStore(permanent, 1024)
	require.NoError(t, err)

	return &fixture{
		deps: Deps{
			World:    w,
			Tiles:    tiles,
			Entities: store,
			Bus:      event.NewBus(),
		},
		permanent: permanent,
		transient: arena.NewSized("transient", 1<<20),
	}
}

func (f *fixture) add(t *testing.T, sim entity.Sim, tx, ty int32) uint32 {
	t.Helper()
	p := f.deps.World.ChunkPositionFromTilePosition(tx, ty, 0, mgl32.Vec2{})
	idx, err := f.deps.Entities.Add(f.deps.World, sim, p)
	require.NoError(t, err)
	return idx
}

// eightTiles is a rectangle of +-8 tiles around the origin.
func eightTiles() mathx.Rect {
	return mathx.RectCenterHalfDim(mgl32.Vec2{}, mgl32.Vec2{8 * tileSide, 8 * tileSide})
}

func storageIndices(r *Region) []uint32 {
	var ids []uint32
	for _, e := range r.Entities() {
		ids = append(ids, e.StorageIndex)
	}
	return ids
}

func chunkHas(w *world.World, p world.Position, index uint32) bool {
	ref, ok := w.GetChunk(p.ChunkX, p.ChunkY, p.ChunkZ)
	if !ok {
		return false
	}
	found := false
	w.ChunkEntities(ref, func(id uint32) bool {
		found = id == index
		return !found
	})
	return found
}

func TestBeginSimSelectsBoundedEntities(t *testing.T) {
	f := newDiagonalWorld(t)
	hero := f.add(t, entity.Sim{Type: entity.TypeHero}, 10, 3)
	monster := f.add(t, entity.Sim{Type: entity.TypeMonster}, 2, 5)
	familiar := f.add(t, entity.Sim{Type: entity.TypeFamiliar}, 15, 15)
	f.add(t, entity.Sim{Type: entity.TypeMonster}, 16, 3)
	f.add(t, entity.Sim{Type: entity.TypeMonster}, 40, 40)
	sword := f.add(t, entity.Sim{Type: entity.TypeSword}, 0, 0)
	require.NoError(t, f.deps.Entities.ChangeLocation(f.deps.World, sword, world.NullPosition()))

	r, err := BeginSim(f.deps, f.transient, world.CenteredChunkPoint(0, 0, 0), eightTiles(), 64)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{hero, monster, familiar}, storageIndices(r))

	e, ok := r.Get(hero)
	require.True(t, ok)
	assert.True(t, e.Updatable)
	assert.True(t, e.P.ApproxEqualThreshold(mgl32.Vec2{2.5 * tileSide, -4.5 * tileSide}, 1e-4))

	require.NoError(t, EndSim(r))
}

func TestSafetyMarginEntitiesAreNotUpdatable(t *testing.T) {
	f := newDiagonalWorld(t)
	f.deps.SafetyMargin = tileSide
	inside := f.add(t, entity.Sim{Type: entity.TypeMonster}, 4, 5)
	edge := f.add(t, entity.Sim{Type: entity.TypeMonster}, 16, 5)

	r, err := BeginSim(f.deps, f.transient, world.CenteredChunkPoint(0, 0, 0), eightTiles(), 64)
	require.NoError(t, err)

	e, ok := r.Get(inside)
	require.True(t, ok)
	assert.True(t, e.Updatable)
	e, ok = r.Get(edge)
	require.True(t, ok)
	assert.False(t, e.Updatable)
}

func TestBeginSimCapacityExceeded(t *testing.T) {
	f := newDiagonalWorld(t)
	for i := int32(0); i < 3; i++ {
		f.add(t, entity.Sim{Type: entity.TypeMonster}, 1+i, 5)
	}
	before := *f.deps.Entities.Get(1)
	_, err := BeginSim(f.deps, f.transient, world.CenteredChunkPoint(0, 0, 0), eightTiles(), 2)
	assert.True(t, errors.Is(err, ErrRegionFull))
	assert.Equal(t, before, *f.deps.Entities.Get(1))
}

func TestSwordReferenceIsPulledIn(t *testing.T) {
	f := newDiagonalWorld(t)
	sword, err := f.deps.Entities.Add(f.deps.World, entity.Sim{Type: entity.TypeSword}, world.NullPosition())
	require.NoError(t, err)
	hero := f.add(t, entity.Sim{Type: entity.TypeHero, Sword: sword}, 5, 3)

	r, err := BeginSim(f.deps, f.transient, world.CenteredChunkPoint(0, 0, 0), eightTiles(), 64)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{hero, sword}, storageIndices(r))

	s, ok := r.Get(sword)
	require.True(t, ok)
	assert.Equal(t, entity.InvalidP, s.P)

	h, _ := r.Get(hero)
	s.MakeSpatial(h.P, mgl32.Vec2{5, 0})
	require.NoError(t, EndSim(r))

	stored := f.deps.Entities.Get(sword)
	assert.True(t, stored.P.IsValid())
	assert.True(t, chunkHas(f.deps.World, stored.P, sword))
}

func TestEndSimFailedCommitKeepsStoredRecord(t *testing.T) {
	f := newDiagonalWorld(t)
	sword, err := f.deps.Entities.Add(f.deps.World, entity.Sim{Type: entity.TypeSword}, world.NullPosition())
	require.NoError(t, err)
	hero := f.add(t, entity.Sim{Type: entity.TypeHero, Sword: sword}, 5, 3)
	before := *f.deps.Entities.Get(sword)

	r, err := BeginSim(f.deps, f.transient, world.CenteredChunkPoint(0, 0, 0), eightTiles(), 64)
	require.NoError(t, err)
	s, ok := r.Get(sword)
	require.True(t, ok)
	h, _ := r.Get(hero)
	// Chunk (1, 0, 0) holds no entities yet, so committing there needs
	// fresh permanent storage.
	s.MakeSpatial(mgl32.Vec2{20 * tileSide, h.P.Y()}, mgl32.Vec2{5, 0})

	_, err = arena.PushSlice[byte](f.permanent, f.permanent.Remaining())
	require.NoError(t, err)

	err = EndSim(r)
	assert.True(t, errors.Is(err, arena.ErrExhausted), "err = %v", err)
	assert.Equal(t, before, *f.deps.Entities.Get(sword))
	assert.False(t, f.deps.Entities.Get(sword).P.IsValid())

	// The next frame still sees the sword as non-spatial.
	r, err = BeginSim(f.deps, f.transient, world.CenteredChunkPoint(0, 0, 0), eightTiles(), 64)
	require.NoError(t, err)
	s, ok = r.Get(sword)
	require.True(t, ok)
	assert.True(t, s.Flags.Has(entity.FlagNonspatial))
	assert.False(t, s.Updatable)
	require.NoError(t, EndSim(r))
	assert.False(t, f.deps.Entities.Get(sword).P.IsValid())
}

func TestHeroWalksAcrossChunkBoundary(t *testing.T) {
	f := newDiagonalWorld(t)
	hero := f.add(t, entity.Sim{Type: entity.TypeHero}, 10, 3)
	w := f.deps.World

	var crossings []event.EntityChunkChanged
	event.Subscribe(f.deps.Bus, func(e event.EntityChunkChanged) { crossings = append(crossings, e) })

	const frames = 10
	for frame := 1; frame <= frames; frame++ {
		stored := f.deps.Entities.Get(hero)
		center := world.CenteredChunkPoint(stored.P.ChunkX, stored.P.ChunkY, stored.P.ChunkZ)

		tmp := f.transient.BeginTemporary()
		r, err := BeginSim(f.deps, f.transient, center, eightTiles(), 64)
		require.NoError(t, err)
		e, ok := r.Get(hero)
		require.True(t, ok, "frame %d", frame)
		e.P = e.P.Add(mgl32.Vec2{tileSide, 0})
		require.NoError(t, EndSim(r))
		tmp.End()

		f.deps.Bus.SwapBuffers()
		f.deps.Bus.DispatchAll()

		stored = f.deps.Entities.Get(hero)
		tileX := int32(10 + frame)
		assert.Equal(t, tileX, w.TilePosition(stored.P).AbsTileX, "frame %d", frame)
		assert.Equal(t, tileX/16, stored.P.ChunkX, "frame %d", frame)
		assert.True(t, chunkHas(w, stored.P, hero), "frame %d", frame)
		if stored.P.ChunkX == 1 {
			assert.False(t, chunkHas(w, world.CenteredChunkPoint(0, 0, 0), hero), "frame %d", frame)
		}
	}

	require.Len(t, crossings, 1)
	assert.Equal(t, hero, crossings[0].StorageIndex)
	assert.Equal(t, int32(0), crossings[0].From.ChunkX)
	assert.Equal(t, int32(1), crossings[0].To.ChunkX)
	assert.NoError(t, f.transient.CheckClean())
}
