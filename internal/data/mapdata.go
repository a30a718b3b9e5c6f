package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/tilemap"
	"github.com/tilequest/worldsim/internal/worldgen"
)

var ErrLayout = errors.New("invalid world layout")

// Tile glyphs used in layout rows. A space leaves the tile unmaterialized.
const (
	glyphWall      = '#'
	glyphFloor     = '.'
	glyphDoor      = '+'
	glyphStairsUp  = '<'
	glyphStairsDwn = '>'
	glyphHero      = '@'
	glyphMonster   = 'm'
	glyphFamiliar  = 'f'
	glyphNone      = ' '
)

// Point is a tile coordinate in a layout file.
type Point struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
	Z int32 `yaml:"z"`
}

// Spawn places one entity. Coordinates are relative to the layer origin.
type Spawn struct {
	Type string `yaml:"type"`
	X    int32  `yaml:"x"`
	Y    int32  `yaml:"y"`
}

// Layer is one z level of a layout. Rows run top to bottom, so the last row
// sits at Origin.Y.
type Layer struct {
	Origin Point    `yaml:"origin"`
	Rows   []string `yaml:"rows"`
	Spawns []Spawn  `yaml:"spawns"`
}

// Layout is a hand-authored world loaded from world.yaml.
type Layout struct {
	Name   string  `yaml:"name"`
	Layers []Layer `yaml:"layers"`
}

// LoadLayout reads and validates a YAML world layout.
func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	return ParseLayout(raw)
}

func ParseLayout(raw []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(l.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrLayout)
	}
	heroes := 0
	for li, layer := range l.Layers {
		for ri, row := range layer.Rows {
			for ci, ch := range row {
				if _, _, ok := glyph(ch); !ok {
					return nil, fmt.Errorf("%w: layer %d row %d col %d: unknown glyph %q", ErrLayout, li, ri, ci, ch)
				}
				if ch == glyphHero {
					heroes++
				}
			}
		}
		for si, s := range layer.Spawns {
			if _, ok := entity.ParseType(s.Type); !ok {
				return nil, fmt.Errorf("%w: layer %d spawn %d: unknown type %q", ErrLayout, li, si, s.Type)
			}
		}
	}
	if heroes != 1 {
		return nil, fmt.Errorf("%w: want exactly one hero spawn '@', got %d", ErrLayout, heroes)
	}
	return &l, nil
}

// glyph maps a layout character to its tile value and the entity standing
// on it.
func glyph(ch rune) (v tilemap.TileValue, spawn entity.Type, ok bool) {
	switch ch {
	case glyphWall:
		return tilemap.TileBlocking, entity.TypeNull, true
	case glyphFloor, glyphHero:
		return tilemap.TileEmpty, entity.TypeNull, true
	case glyphDoor:
		return tilemap.TileDoor, entity.TypeNull, true
	case glyphStairsUp:
		return tilemap.TileStairsUp, entity.TypeNull, true
	case glyphStairsDwn:
		return tilemap.TileStairsDown, entity.TypeNull, true
	case glyphMonster:
		return tilemap.TileEmpty, entity.TypeMonster, true
	case glyphFamiliar:
		return tilemap.TileEmpty, entity.TypeFamiliar, true
	case glyphNone:
		return tilemap.TileEmpty, entity.TypeNull, true
	}
	return 0, entity.TypeNull, false
}

// Apply writes the layout into t. The hero glyph becomes the spawn point.
func (l *Layout) Apply(t worldgen.Target) (worldgen.Result, error) {
	c := &worldgen.Counter{Target: t}
	var res worldgen.Result
	for _, layer := range l.Layers {
		top := layer.Origin.Y + int32(len(layer.Rows)) - 1
		z := layer.Origin.Z
		for ri, row := range layer.Rows {
			y := top - int32(ri)
			for ci, ch := range []rune(row) {
				if ch == glyphNone {
					continue
				}
				x := layer.Origin.X + int32(ci)
				v, spawn, _ := glyph(ch)
				if err := c.SetTile(x, y, z, v); err != nil {
					return res, fmt.Errorf("layout %s tile %d,%d,%d: %w", l.Name, x, y, z, err)
				}
				if v == tilemap.TileDoor {
					res.Doors++
				}
				if ch == glyphHero {
					res.Spawn = worldgen.TilePoint{X: x, Y: y, Z: z}
				}
				if spawn != entity.TypeNull {
					if _, err := c.AddEntity(spawn, x, y, z); err != nil {
						return res, fmt.Errorf("layout %s spawn %s: %w", l.Name, spawn, err)
					}
				}
			}
		}
		for _, s := range layer.Spawns {
			typ, _ := entity.ParseType(s.Type)
			x, y := layer.Origin.X+s.X, layer.Origin.Y+s.Y
			if _, err := c.AddEntity(typ, x, y, z); err != nil {
				return res, fmt.Errorf("layout %s spawn %s: %w", l.Name, typ, err)
			}
		}
	}
	res.Tiles = c.Tiles
	res.Entities = c.Entities
	return res, nil
}
