package scripting

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/tilemap"
	"github.com/tilequest/worldsim/internal/worldgen"
)

var ErrNoGenerator = errors.New("lua function generate not defined")

// Engine wraps a single gopher-lua VM that runs world-generation scripts.
// Single-goroutine access only; generation runs before the first frame.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory, helpers under lib/ first.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("TILE_EMPTY", lua.LNumber(tilemap.TileEmpty))
	vm.SetGlobal("TILE_BLOCKING", lua.LNumber(tilemap.TileBlocking))
	vm.SetGlobal("TILE_DOOR", lua.LNumber(tilemap.TileDoor))
	vm.SetGlobal("TILE_STAIRS_UP", lua.LNumber(tilemap.TileStairsUp))
	vm.SetGlobal("TILE_STAIRS_DOWN", lua.LNumber(tilemap.TileStairsDown))
	vm.SetGlobal("ROOM_W", lua.LNumber(worldgen.RoomTilesX))
	vm.SetGlobal("ROOM_H", lua.LNumber(worldgen.RoomTilesY))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))

	if err := e.loadDir(filepath.Join(scriptsDir, "lib")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lib scripts: %w", err)
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load worldgen scripts: %w", err)
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() { e.vm.Close() }

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// Generate calls the Lua generate(params) function against t. Scripts write
// through set_tile(x, y, z, value) and add_entity(type, x, y, z), draw
// deterministic numbers from rand_int(lo, hi), and may return a spawn
// table {x=, y=, z=}.
func (e *Engine) Generate(t worldgen.Target, p worldgen.Params) (worldgen.Result, error) {
	fn := e.vm.GetGlobal("generate")
	if fn == lua.LNil {
		return worldgen.Result{}, ErrNoGenerator
	}

	c := &worldgen.Counter{Target: t}
	rng := rand.New(rand.NewSource(p.Seed))
	var hostErr error
	doors := 0

	e.vm.SetGlobal("set_tile", e.vm.NewFunction(func(L *lua.LState) int {
		x, y, z := int32(L.CheckInt(1)), int32(L.CheckInt(2)), int32(L.CheckInt(3))
		v := tilemap.TileValue(L.CheckInt(4))
		if err := c.SetTile(x, y, z, v); err != nil {
			hostErr = fmt.Errorf("set_tile %d,%d,%d: %w", x, y, z, err)
			L.RaiseError("%s", hostErr.Error())
			return 0
		}
		if v == tilemap.TileDoor {
			doors++
		}
		return 0
	}))
	e.vm.SetGlobal("add_entity", e.vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		typ, ok := entity.ParseType(name)
		if !ok || typ == entity.TypeSword {
			L.ArgError(1, "unknown entity type "+name)
			return 0
		}
		x, y, z := int32(L.CheckInt(2)), int32(L.CheckInt(3)), int32(L.CheckInt(4))
		idx, err := c.AddEntity(typ, x, y, z)
		if err != nil {
			hostErr = fmt.Errorf("add_entity %s: %w", name, err)
			L.RaiseError("%s", hostErr.Error())
			return 0
		}
		L.Push(lua.LNumber(idx))
		return 1
	}))
	e.vm.SetGlobal("rand_int", e.vm.NewFunction(func(L *lua.LState) int {
		lo, hi := L.CheckInt(1), L.CheckInt(2)
		if hi < lo {
			L.ArgError(2, "empty range")
			return 0
		}
		L.Push(lua.LNumber(lo + rng.Intn(hi-lo+1)))
		return 1
	}))

	params := e.vm.NewTable()
	params.RawSetString("seed", lua.LNumber(p.Seed))
	params.RawSetString("screens_x", lua.LNumber(p.ScreensX))
	params.RawSetString("screens_y", lua.LNumber(p.ScreensY))
	params.RawSetString("z", lua.LNumber(p.Z))
	params.RawSetString("monster_chance", lua.LNumber(p.MonsterChance))
	params.RawSetString("familiar_chance", lua.LNumber(p.FamiliarChance))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, params); err != nil {
		if hostErr != nil {
			return worldgen.Result{}, hostErr
		}
		return worldgen.Result{}, fmt.Errorf("lua generate: %w", err)
	}

	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	res := worldgen.Result{
		Doors:    doors,
		Tiles:    c.Tiles,
		Entities: c.Entities,
		Spawn:    worldgen.TilePoint{X: worldgen.RoomTilesX / 2, Y: worldgen.RoomTilesY / 2, Z: p.Z},
	}
	if rt, ok := ret.(*lua.LTable); ok {
		res.Spawn = worldgen.TilePoint{
			X: int32(lua.LVAsNumber(rt.RawGetString("x"))),
			Y: int32(lua.LVAsNumber(rt.RawGetString("y"))),
			Z: int32(lua.LVAsNumber(rt.RawGetString("z"))),
		}
		res.Rooms = int(lua.LVAsNumber(rt.RawGetString("rooms")))
	}
	e.log.Debug("lua generation done",
		zap.Int("tiles", res.Tiles),
		zap.Int("entities", res.Entities),
		zap.Int("doors", res.Doors),
	)
	return res, nil
}
