package worldgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/tilemap"
)

// Room size in tiles. One room fills one screen.
const (
	RoomTilesX = 17
	RoomTilesY = 9
)

var ErrParams = errors.New("invalid generation parameters")

type Params struct {
	Seed     int64
	ScreensX int32
	ScreensY int32
	Z        int32
	// Chance of a monster and of a familiar in each room, 0..1.
	MonsterChance  float64
	FamiliarChance float64
}

// DefaultParams is a 4x4 screen dungeon.
func DefaultParams(seed int64) Params {
	return Params{Seed: seed, ScreensX: 4, ScreensY: 4, MonsterChance: 0.5, FamiliarChance: 0.25}
}

type screen struct{ x, y int32 }

// Rooms lays out a grid of walled rooms joined by doors. The doors form a
// random spanning tree over the grid, so every room is reachable. Output is
// a pure function of Params.
func Rooms(t Target, p Params) (Result, error) {
	if p.ScreensX <= 0 || p.ScreensY <= 0 {
		return Result{}, fmt.Errorf("%w: %dx%d screens", ErrParams, p.ScreensX, p.ScreensY)
	}
	rng := rand.New(rand.NewSource(p.Seed))
	c := &Counter{Target: t}
	res := Result{Spawn: TilePoint{RoomTilesX / 2, RoomTilesY / 2, p.Z}}

	// doorEast[s] / doorNorth[s]: s connects to its east / north neighbour.
	doorEast := make(map[screen]bool)
	doorNorth := make(map[screen]bool)
	visited := map[screen]bool{{0, 0}: true}
	stack := []screen{{0, 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		var next []screen
		for _, d := range [4]screen{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n := screen{cur.x + d.x, cur.y + d.y}
			if n.x < 0 || n.y < 0 || n.x >= p.ScreensX || n.y >= p.ScreensY || visited[n] {
				continue
			}
			next = append(next, n)
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := next[rng.Intn(len(next))]
		switch {
		case n.x > cur.x:
			doorEast[cur] = true
		case n.x < cur.x:
			doorEast[n] = true
		case n.y > cur.y:
			doorNorth[cur] = true
		default:
			doorNorth[n] = true
		}
		res.Doors++
		visited[n] = true
		stack = append(stack, n)
	}

	for sy := int32(0); sy < p.ScreensY; sy++ {
		for sx := int32(0); sx < p.ScreensX; sx++ {
			s := screen{sx, sy}
			doors := roomDoors{
				east:  doorEast[s],
				west:  sx > 0 && doorEast[screen{sx - 1, sy}],
				north: doorNorth[s],
				south: sy > 0 && doorNorth[screen{sx, sy - 1}],
			}
			if err := buildRoom(c, rng, p, s, doors); err != nil {
				return Result{}, fmt.Errorf("room %d,%d: %w", sx, sy, err)
			}
			res.Rooms++
		}
	}
	res.Tiles = c.Tiles
	res.Entities = c.Entities
	return res, nil
}

type roomDoors struct {
	east, west, north, south bool
}

func buildRoom(t Target, rng *rand.Rand, p Params, s screen, doors roomDoors) error {
	baseX := s.x * RoomTilesX
	baseY := s.y * RoomTilesY
	midX := int32(RoomTilesX / 2)
	midY := int32(RoomTilesY / 2)

	monster := [2]int32{midX + 3, midY + 1}
	familiar := [2]int32{midX - 3, midY - 1}

	// one pillar, kept off the middle row and column so it never cuts a path
	pillarX := 2 + rng.Int31n(RoomTilesX-4)
	pillarY := 2 + rng.Int31n(RoomTilesY-4)
	pillar := [2]int32{pillarX, pillarY}
	hasPillar := pillarX != midX && pillarY != midY && pillar != monster && pillar != familiar

	for ty := int32(0); ty < RoomTilesY; ty++ {
		for tx := int32(0); tx < RoomTilesX; tx++ {
			v := tilemap.TileEmpty
			switch {
			case tx == 0 && ty == midY && doors.west,
				tx == RoomTilesX-1 && ty == midY && doors.east,
				ty == 0 && tx == midX && doors.south,
				ty == RoomTilesY-1 && tx == midX && doors.north:
				v = tilemap.TileDoor
			case tx == 0 || ty == 0 || tx == RoomTilesX-1 || ty == RoomTilesY-1:
				v = tilemap.TileBlocking
			case hasPillar && tx == pillarX && ty == pillarY:
				v = tilemap.TileBlocking
			}
			if err := t.SetTile(baseX+tx, baseY+ty, p.Z, v); err != nil {
				return err
			}
		}
	}

	spawnAt := func(typ entity.Type, tx, ty int32) error {
		_, err := t.AddEntity(typ, baseX+tx, baseY+ty, p.Z)
		return err
	}
	if rng.Float64() < p.MonsterChance {
		if err := spawnAt(entity.TypeMonster, monster[0], monster[1]); err != nil {
			return err
		}
	}
	if rng.Float64() < p.FamiliarChance {
		if err := spawnAt(entity.TypeFamiliar, familiar[0], familiar[1]); err != nil {
			return err
		}
	}
	return nil
}
