// Package sim extracts a bounded working set of entities around a point of
// the world for one frame and commits their motion back afterwards.
//
// A Region is created by BeginSim, mutated by the frame's behaviors, and
// consumed by EndSim. The world is only written in EndSim, so a frame that
// is abandoned half way leaves the persistent state untouched.
package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/tilequest/worldsim/internal/core/arena"
	"github.com/tilequest/worldsim/internal/core/event"
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/mathx"
	"github.com/tilequest/worldsim/internal/tilemap"
	"github.com/tilequest/worldsim/internal/world"
)

var ErrRegionFull = errors.New("simulation region entity capacity exceeded")

// Deps carries the persistent state a region reads from and commits to.
type Deps struct {
	World    *world.World
	Tiles    *tilemap.TileMap // nil disables tile collision
	Entities *entity.Store
	Bus      *event.Bus // nil disables events
	Log      *zap.Logger

	// SafetyMargin grows the updatable bounds so entities just outside
	// them are present for collision.
	SafetyMargin float32
}

type hashSlot struct {
	StorageIndex uint32
	Slot         uint32 // index into entities + 1, 0 = empty
}

// Region is one frame's working set. The header lives on the heap; the
// entity array and the storage-index hash are carved from the frame arena.
type Region struct {
	deps Deps

	Origin          world.Position
	Bounds          mathx.Rect
	UpdatableBounds mathx.Rect

	entities []entity.Sim
	hash     []hashSlot
	hashMask uint32
}

// BeginSim copies every spatial entity whose position falls inside bounds
// (grown by the safety margin) around origin into a new region. Only chunks
// overlapping the bounds on origin's z level are visited.
func BeginSim(d Deps, a *arena.Arena, origin world.Position, bounds mathx.Rect, maxEntities int) (*Region, error) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	ents, err := arena.PushSlice[entity.Sim](a, maxEntities)
	if err != nil {
		return nil, fmt.Errorf("sim entities: %w", err)
	}
	hashSize := 1
	for hashSize < 2*maxEntities {
		hashSize <<= 1
	}
	hash, err := arena.PushSlice[hashSlot](a, hashSize)
	if err != nil {
		return nil, fmt.Errorf("sim entity hash: %w", err)
	}

	r := &Region{
		deps:            d,
		Origin:          origin,
		UpdatableBounds: bounds,
		Bounds:          bounds.AddRadius(d.SafetyMargin, d.SafetyMargin),
		entities:        arena.Slice(a, ents)[:0],
		hash:            arena.Slice(a, hash),
		hashMask:        uint32(hashSize - 1),
	}

	w := d.World
	minP := w.MapIntoChunkSpace(origin, r.Bounds.MinCorner())
	maxP := w.MapIntoChunkSpace(origin, r.Bounds.MaxCorner())
	for cy := minP.ChunkY; cy <= maxP.ChunkY; cy++ {
		for cx := minP.ChunkX; cx <= maxP.ChunkX; cx++ {
			ref, ok := w.GetChunk(cx, cy, origin.ChunkZ)
			if !ok {
				continue
			}
			if err := r.addChunk(ref); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Region) addChunk(ref world.ChunkRef) error {
	var err error
	r.deps.World.ChunkEntities(ref, func(index uint32) bool {
		stored := r.deps.Entities.Get(index)
		if stored == nil || stored.Sim.Flags.Has(entity.FlagNonspatial) {
			return true
		}
		p := r.simSpaceP(stored)
		if !r.Bounds.Contains(p) {
			return true
		}
		_, err = r.AddEntity(index, &p)
		return err == nil
	})
	return err
}

// simSpaceP converts a stored position into region-local meters.
func (r *Region) simSpaceP(stored *entity.Stored) mgl32.Vec2 {
	if stored.Sim.Flags.Has(entity.FlagNonspatial) || !stored.P.IsValid() {
		return entity.InvalidP
	}
	return r.deps.World.Subtract(stored.P, r.Origin).DXY
}

// AddEntity copies the stored entity into the region, or returns the copy
// already there. simP, when given, is the region-local position; otherwise
// it is derived from the stored world position. A referenced sword is pulled
// in along with its owner.
func (r *Region) AddEntity(index uint32, simP *mgl32.Vec2) (*entity.Sim, error) {
	if e, ok := r.Get(index); ok {
		return e, nil
	}
	stored := r.deps.Entities.Get(index)
	if stored == nil {
		return nil, fmt.Errorf("add entity %d: no such stored entity", index)
	}
	n := len(r.entities)
	if n == cap(r.entities) {
		return nil, fmt.Errorf("%w: %d entities", ErrRegionFull, cap(r.entities))
	}
	r.entities = r.entities[:n+1]
	e := &r.entities[n]
	*e = stored.Sim
	e.StorageIndex = index
	e.Updatable = false
	r.mapStorageIndex(index, uint32(n))

	if simP != nil {
		e.P = *simP
	} else {
		e.P = r.simSpaceP(stored)
	}
	e.Updatable = !e.Flags.Has(entity.FlagNonspatial) && r.UpdatableBounds.Contains(e.P)

	if e.Sword != 0 {
		if _, err := r.AddEntity(e.Sword, nil); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (r *Region) mapStorageIndex(index, slot uint32) {
	for i := uint32(0); i <= r.hashMask; i++ {
		h := &r.hash[(index+i)&r.hashMask]
		if h.Slot == 0 {
			h.StorageIndex = index
			h.Slot = slot + 1
			return
		}
	}
	// Unreachable: the table is at least twice the entity capacity.
	panic("sim: storage index hash full")
}

// Get returns the region's copy of a stored entity.
func (r *Region) Get(index uint32) (*entity.Sim, bool) {
	for i := uint32(0); i <= r.hashMask; i++ {
		h := &r.hash[(index+i)&r.hashMask]
		if h.Slot == 0 {
			return nil, false
		}
		if h.StorageIndex == index {
			return &r.entities[h.Slot-1], true
		}
	}
	return nil, false
}

// Entities returns the region's working set. The slice aliases the frame
// arena.
func (r *Region) Entities() []entity.Sim { return r.entities }

func (r *Region) Count() int { return len(r.entities) }

func (r *Region) World() *world.World { return r.deps.World }

// EndSim writes every entity back to its stored record and moves its chunk
// membership to the committed position. Failures are per entity: an entity
// whose chunk move fails keeps its previous stored record, and the rest of
// the region is still committed.
func EndSim(r *Region) error {
	w := r.deps.World
	store := r.deps.Entities
	var errs []error
	for i := range r.entities {
		e := &r.entities[i]
		stored := store.Get(e.StorageIndex)
		oldP := stored.P

		newP := world.NullPosition()
		if !e.Flags.Has(entity.FlagNonspatial) {
			newP = w.MapIntoChunkSpace(r.Origin, e.P)
		}
		if err := store.ChangeLocation(w, e.StorageIndex, newP); err != nil {
			errs = append(errs, fmt.Errorf("commit entity %d: %w", e.StorageIndex, err))
			continue
		}
		stored.Sim = *e
		stored.Sim.Updatable = false

		if oldP.IsValid() != newP.IsValid() || (newP.IsValid() && !world.AreInSameChunk(oldP, newP)) {
			event.Emit(r.deps.Bus, event.EntityChunkChanged{
				StorageIndex: e.StorageIndex,
				Type:         e.Type,
				From:         oldP,
				To:           newP,
			})
		}
	}
	if len(errs) > 0 {
		r.deps.Log.Error("sim commit failed", zap.Int("entities", len(errs)))
		return errors.Join(errs...)
	}
	return nil
}
