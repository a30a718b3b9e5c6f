package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/tilemap"
	"github.com/tilequest/worldsim/internal/world"
)

// SetTile writes one tile of generated content.
func (s *State) SetTile(x, y, z int32, v tilemap.TileValue) error {
	return s.tiles.SetTileValue(x, y, z, v)
}

// AddEntity places a generated entity on the centre of a tile.
func (s *State) AddEntity(t entity.Type, x, y, z int32) (uint32, error) {
	switch t {
	case entity.TypeHero:
		return s.AddHero(x, y, z)
	case entity.TypeWall:
		side := s.world.TileSideInMeters()
		return s.add(entity.Sim{Type: t, Flags: entity.FlagCollides, Width: side, Height: side}, x, y, z)
	case entity.TypeFamiliar:
		return s.add(entity.Sim{Type: t, Width: 1, Height: 0.5}, x, y, z)
	case entity.TypeMonster:
		return s.add(entity.Sim{Type: t, Flags: entity.FlagCollides, Width: 1, Height: 0.5, HitPoints: 3, MaxHitPoints: 3}, x, y, z)
	}
	return 0, fmt.Errorf("entity type %s cannot be placed on a tile", t)
}

// AddHero places a hero and its sword. The sword starts non-spatial. Either
// both are stored or neither is.
func (s *State) AddHero(x, y, z int32) (uint32, error) {
	if free := s.entities.Free(); free < 2 {
		return 0, fmt.Errorf("add hero: %w: %d free", entity.ErrStoreFull, free)
	}
	hero, err := s.add(entity.Sim{
		Type:         entity.TypeHero,
		Flags:        entity.FlagCollides,
		Width:        1,
		Height:       0.5,
		HitPoints:    3,
		MaxHitPoints: 3,
	}, x, y, z)
	if err != nil {
		return 0, err
	}
	// A non-spatial add touches no chunk, so with room checked above it
	// cannot fail.
	sword, err := s.entities.Add(s.world, entity.Sim{Type: entity.TypeSword, Width: 0.5, Height: 0.5}, world.NullPosition())
	if err != nil {
		return 0, fmt.Errorf("hero sword: %w", err)
	}
	s.entities.Get(hero).Sim.Sword = sword
	return hero, nil
}

func (s *State) add(e entity.Sim, x, y, z int32) (uint32, error) {
	p := s.world.ChunkPositionFromTilePosition(x, y, z, mgl32.Vec2{})
	idx, err := s.entities.Add(s.world, e, p)
	if err != nil {
		return 0, fmt.Errorf("add %s at %d,%d,%d: %w", e.Type, x, y, z, err)
	}
	return idx, nil
}
