// Package game wires the arenas, world, tile map, entity store and frame
// systems into one state driven by the host one frame at a time.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/tilequest/worldsim/internal/config"
	"github.com/tilequest/worldsim/internal/core/arena"
	"github.com/tilequest/worldsim/internal/core/event"
	coresys "github.com/tilequest/worldsim/internal/core/system"
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/input"
	"github.com/tilequest/worldsim/internal/sim"
	"github.com/tilequest/worldsim/internal/system"
	"github.com/tilequest/worldsim/internal/tilemap"
	"github.com/tilequest/worldsim/internal/world"
	"github.com/tilequest/worldsim/internal/worldgen"
)

var ErrAlreadyRunning = errors.New("world generation after the first frame")

// Memory is the pair of blocks the host hands over at startup. Nothing else
// is allocated for world content.
type Memory struct {
	Permanent []byte
	Transient []byte
}

func NewMemory(permanent, transient int) Memory {
	return Memory{Permanent: make([]byte, permanent), Transient: make([]byte, transient)}
}

type State struct {
	cfg *config.Config
	log *zap.Logger

	permanent *arena.Arena
	transient *arena.Arena

	world    *world.World
	tiles    *tilemap.TileMap
	entities *entity.Store
	bus      *event.Bus

	frame  *system.FrameState
	runner *coresys.Runner

	spawn worldgen.TilePoint
}

// New carves the persistent structures out of mem.Permanent and registers
// the frame systems.
func New(cfg *config.Config, mem Memory, log *zap.Logger) (*State, error) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, size := range []int{len(mem.Permanent), len(mem.Transient)} {
		if err := arena.CheckCapacity(size); err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
	}
	permanent := arena.New("permanent", mem.Permanent)
	transient := arena.New("transient", mem.Transient)

	w, err := world.New(permanent, world.Config{
		TileSideInMeters: cfg.World.TileSideInMeters,
		TilesPerChunk:    cfg.World.TilesPerChunk,
		BucketCount:      cfg.World.ChunkBuckets,
	}, log.Named("world"))
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	tiles, err := tilemap.New(permanent, tilemap.Config{
		ChunkDim:         cfg.TileMap.ChunkDim,
		ChunkCountX:      cfg.TileMap.ChunkCountX,
		ChunkCountY:      cfg.TileMap.ChunkCountY,
		ChunkCountZ:      cfg.TileMap.ChunkCountZ,
		TileSideInMeters: cfg.World.TileSideInMeters,
	})
	if err != nil {
		return nil, fmt.Errorf("tile map: %w", err)
	}
	store, err := entity.NewStore(permanent, cfg.World.MaxEntities)
	if err != nil {
		return nil, fmt.Errorf("entities: %w", err)
	}

	s := &State{
		cfg:       cfg,
		log:       log,
		permanent: permanent,
		transient: transient,
		world:     w,
		tiles:     tiles,
		entities:  store,
		bus:       event.NewBus(),
	}

	side := cfg.World.TileSideInMeters
	s.frame = &system.FrameState{
		Sim: sim.Deps{
			World:        w,
			Tiles:        tiles,
			Entities:     store,
			Bus:          s.bus,
			Log:          log.Named("sim"),
			SafetyMargin: cfg.Sim.SafetyMarginTiles * side,
		},
		Transient: transient,
		Camera:    world.CenteredChunkPoint(0, 0, 0),
	}

	halfDim := mgl32.Vec2{float32(cfg.Sim.CameraTilesX) * side, float32(cfg.Sim.CameraTilesY) * side}
	s.runner = coresys.NewRunner()
	s.runner.Register(system.NewInputSystem(s.frame, s.spawnHero, log))
	s.runner.Register(system.NewEventSystem(s.bus, s.frame, log))
	s.runner.Register(system.NewSimulationSystem(s.frame, halfDim, cfg.Sim.MaxEntities, log))
	s.runner.Register(system.NewCameraSystem(s.frame))
	s.runner.Register(system.NewCleanupSystem(s.frame, log))
	return s, nil
}

func (s *State) spawnHero(controller int) (uint32, error) {
	return s.AddHero(s.spawn.X, s.spawn.Y, s.spawn.Z)
}

// Frame runs one frame against the input snapshot.
func (s *State) Frame(in input.Frame, dt time.Duration) {
	s.frame.Input = in
	s.runner.Tick(dt)
}

// Visible walks the entities of the last simulated camera region.
func (s *State) Visible(fn func(e *entity.Sim) bool) { s.frame.Visible(fn) }

func (s *State) Camera() world.Position      { return s.frame.Camera }
func (s *State) Stats() system.FrameStats    { return s.frame.Stats }
func (s *State) Spawn() worldgen.TilePoint   { return s.spawn }
func (s *State) World() *world.World         { return s.world }
func (s *State) Tiles() *tilemap.TileMap     { return s.tiles }
func (s *State) Entities() *entity.Store     { return s.entities }
func (s *State) Bus() *event.Bus             { return s.bus }
func (s *State) Control(i int) system.Control { return s.frame.Controls[i] }

// PhaseTimings reports the wall time the frame pipeline spent per phase.
func (s *State) PhaseTimings() []coresys.PhaseTiming { return s.runner.Timings() }

// Metrics reports both arenas.
func (s *State) Metrics() []arena.Metrics {
	return []arena.Metrics{s.permanent.Metrics(), s.transient.Metrics()}
}
