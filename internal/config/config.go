package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalid = errors.New("invalid config")

const (
	// MaxMemoryMB keeps each block addressable by 32-bit arena handles.
	MaxMemoryMB = 4095
	// MaxTilesPerChunk matches the world's chunk side limit.
	MaxTilesPerChunk = 64
)

type Config struct {
	Memory     MemoryConfig     `toml:"memory"`
	World      WorldConfig      `toml:"world"`
	TileMap    TileMapConfig    `toml:"tilemap"`
	Sim        SimConfig        `toml:"sim"`
	Generation GenerationConfig `toml:"generation"`
	Logging    LoggingConfig    `toml:"logging"`
}

// MemoryConfig sizes the two blocks the host hands to the game.
type MemoryConfig struct {
	PermanentMB int `toml:"permanent_mb"`
	TransientMB int `toml:"transient_mb"`
}

type WorldConfig struct {
	TileSideInMeters float32 `toml:"tile_side_in_meters"`
	TilesPerChunk    int32   `toml:"tiles_per_chunk"`
	ChunkBuckets     int     `toml:"chunk_buckets"` // power of two
	MaxEntities      int     `toml:"max_entities"`  // stored entity capacity
}

type TileMapConfig struct {
	ChunkDim    int32 `toml:"chunk_dim"` // power of two
	ChunkCountX int32 `toml:"chunk_count_x"`
	ChunkCountY int32 `toml:"chunk_count_y"`
	ChunkCountZ int32 `toml:"chunk_count_z"`
}

type SimConfig struct {
	TickRate          time.Duration `toml:"tick_rate"`
	MaxEntities       int           `toml:"max_entities"` // per region
	CameraTilesX      int32         `toml:"camera_tiles_x"`
	CameraTilesY      int32         `toml:"camera_tiles_y"`
	SafetyMarginTiles float32       `toml:"safety_margin_tiles"`
}

type GenerationConfig struct {
	Mode     string `toml:"mode"` // "rooms", "lua" or "yaml"
	Seed     int64  `toml:"seed"`
	ScreensX int32  `toml:"screens_x"`
	ScreensY int32  `toml:"screens_y"`
	Script   string `toml:"script"` // directory of .lua files
	Layout   string `toml:"layout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// PermanentBytes and TransientBytes convert the memory sizes to bytes.
func (m MemoryConfig) PermanentBytes() int { return m.PermanentMB << 20 }
func (m MemoryConfig) TransientBytes() int { return m.TransientMB << 20 }

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse overlays a TOML document on the defaults.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config { return defaults() }

func (c *Config) Validate() error {
	switch {
	case c.Memory.PermanentMB <= 0 || c.Memory.TransientMB <= 0:
		return fmt.Errorf("%w: memory sizes must be positive", ErrInvalid)
	case c.Memory.PermanentMB > MaxMemoryMB || c.Memory.TransientMB > MaxMemoryMB:
		return fmt.Errorf("%w: memory sizes must not exceed %d MB", ErrInvalid, MaxMemoryMB)
	case c.World.TileSideInMeters <= 0:
		return fmt.Errorf("%w: world.tile_side_in_meters must be positive", ErrInvalid)
	case c.World.TilesPerChunk <= 0 || c.World.TilesPerChunk > MaxTilesPerChunk:
		return fmt.Errorf("%w: world.tiles_per_chunk must be in 1..%d", ErrInvalid, MaxTilesPerChunk)
	case c.World.MaxEntities <= 0 || c.Sim.MaxEntities <= 0:
		return fmt.Errorf("%w: entity capacities must be positive", ErrInvalid)
	case c.Sim.TickRate <= 0:
		return fmt.Errorf("%w: sim.tick_rate must be positive", ErrInvalid)
	case c.Sim.CameraTilesX <= 0 || c.Sim.CameraTilesY <= 0:
		return fmt.Errorf("%w: camera extent must be positive", ErrInvalid)
	}
	switch c.Generation.Mode {
	case "rooms", "lua", "yaml":
	default:
		return fmt.Errorf("%w: unknown generation.mode %q", ErrInvalid, c.Generation.Mode)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Memory: MemoryConfig{
			PermanentMB: 64,
			TransientMB: 16,
		},
		World: WorldConfig{
			TileSideInMeters: 1.4,
			TilesPerChunk:    16,
			ChunkBuckets:     4096,
			MaxEntities:      100000,
		},
		TileMap: TileMapConfig{
			ChunkDim:    16,
			ChunkCountX: 128,
			ChunkCountY: 128,
			ChunkCountZ: 2,
		},
		Sim: SimConfig{
			TickRate:          33 * time.Millisecond,
			MaxEntities:       1024,
			CameraTilesX:      17,
			CameraTilesY:      9,
			SafetyMarginTiles: 1,
		},
		Generation: GenerationConfig{
			Mode:     "rooms",
			Seed:     1234,
			ScreensX: 4,
			ScreensY: 4,
			Script:   "scripts/worldgen",
			Layout:   "data/yaml/world.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
