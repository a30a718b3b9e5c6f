package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/tilequest/worldsim/internal/config"
	"github.com/tilequest/worldsim/internal/data"
	"github.com/tilequest/worldsim/internal/scripting"
	"github.com/tilequest/worldsim/internal/worldgen"
)

// Generate fills the world using the configured generator and points the
// camera at the spawn point. It must run before the first frame.
func (s *State) Generate(cfg config.GenerationConfig) (worldgen.Result, error) {
	if s.frame.Stats.Frames > 0 {
		return worldgen.Result{}, ErrAlreadyRunning
	}
	params := worldgen.DefaultParams(cfg.Seed)
	params.ScreensX = cfg.ScreensX
	params.ScreensY = cfg.ScreensY

	var (
		res worldgen.Result
		err error
	)
	switch cfg.Mode {
	case "rooms":
		res, err = worldgen.Rooms(s, params)
	case "lua":
		var eng *scripting.Engine
		eng, err = scripting.NewEngine(cfg.Script, s.log.Named("lua"))
		if err != nil {
			return worldgen.Result{}, fmt.Errorf("lua engine: %w", err)
		}
		defer eng.Close()
		res, err = eng.Generate(s, params)
	case "yaml":
		var layout *data.Layout
		layout, err = data.LoadLayout(cfg.Layout)
		if err != nil {
			return worldgen.Result{}, err
		}
		res, err = layout.Apply(s)
	default:
		return worldgen.Result{}, fmt.Errorf("unknown generation mode %q", cfg.Mode)
	}
	if err != nil {
		return worldgen.Result{}, fmt.Errorf("generate %s: %w", cfg.Mode, err)
	}

	s.spawn = res.Spawn
	s.frame.Camera = s.world.ChunkPositionFromTilePosition(res.Spawn.X, res.Spawn.Y, res.Spawn.Z, mgl32.Vec2{})
	s.log.Info("world generated",
		zap.String("mode", cfg.Mode),
		zap.Int("rooms", res.Rooms),
		zap.Int("tiles", res.Tiles),
		zap.Int("entities", res.Entities),
		zap.Int("tile_chunks", s.tiles.MaterializedChunks()),
		zap.Int("world_chunks", s.world.Stats().Chunks),
	)
	return res, nil
}
