// Package worldgen fills a fresh world with tiles and entities before the
// first frame runs.
package worldgen

import (
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/tilemap"
)

// Target receives generated content. Coordinates are absolute tiles.
type Target interface {
	SetTile(x, y, z int32, v tilemap.TileValue) error
	AddEntity(t entity.Type, x, y, z int32) (uint32, error)
}

// TilePoint is an absolute tile coordinate.
type TilePoint struct {
	X, Y, Z int32
}

// Result summarizes what a generator produced.
type Result struct {
	Rooms    int
	Doors    int
	Tiles    int
	Entities int
	Spawn    TilePoint // where heroes enter the world
}

// Counter wraps a Target and counts what passes through it.
type Counter struct {
	Target
	Tiles    int
	Entities int
}

func (c *Counter) SetTile(x, y, z int32, v tilemap.TileValue) error {
	if err := c.Target.SetTile(x, y, z, v); err != nil {
		return err
	}
	c.Tiles++
	return nil
}

func (c *Counter) AddEntity(t entity.Type, x, y, z int32) (uint32, error) {
	idx, err := c.Target.AddEntity(t, x, y, z)
	if err != nil {
		return 0, err
	}
	c.Entities++
	return idx, nil
}
