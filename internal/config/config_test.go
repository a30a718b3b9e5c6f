package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[sim]
tick_rate = "16ms"
max_entities = 256

[generation]
mode = "lua"
seed = 7

[logging]
format = "json"
`), "inline")
	require.NoError(t, err)

	assert.Equal(t, 16*time.Millisecond, cfg.Sim.TickRate)
	assert.Equal(t, 256, cfg.Sim.MaxEntities)
	assert.Equal(t, "lua", cfg.Generation.Mode)
	assert.Equal(t, int64(7), cfg.Generation.Seed)
	assert.Equal(t, "json", cfg.Logging.Format)

	// untouched sections keep their defaults
	assert.Equal(t, int32(16), cfg.World.TilesPerChunk)
	assert.Equal(t, int32(17), cfg.Sim.CameraTilesX)
	assert.Equal(t, 64<<20, cfg.Memory.PermanentBytes())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"generation mode", "[generation]\nmode = \"maze\""},
		{"log format", "[logging]\nformat = \"xml\""},
		{"memory", "[memory]\ntransient_mb = 0"},
		{"memory too large", "[memory]\npermanent_mb = 4096"},
		{"tiles per chunk", "[world]\ntiles_per_chunk = -1"},
		{"tiles per chunk too large", "[world]\ntiles_per_chunk = 65"},
		{"camera", "[sim]\ncamera_tiles_y = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.name)
			assert.True(t, errors.Is(err, ErrInvalid), "err = %v", err)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("[sim\n"), "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "worldsim.toml"))
	require.NoError(t, err)
	assert.Equal(t, "rooms", cfg.Generation.Mode)
	assert.Equal(t, 33*time.Millisecond, cfg.Sim.TickRate)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
