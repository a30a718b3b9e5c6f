// Package tilemap stores per-tile values in a dense grid of lazily
// materialized chunks carved from an arena.
package tilemap

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/tilequest/worldsim/internal/core/arena"
	"github.com/tilequest/worldsim/internal/mathx"
)

// TileValue is an opaque per-tile value. Only TileBlocking stops movement.
type TileValue uint32

const (
	TileEmpty      TileValue = 0
	TileBlocking   TileValue = 1
	TileDoor       TileValue = 2
	TileStairsUp   TileValue = 3
	TileStairsDown TileValue = 4
)

var (
	ErrConfig    = errors.New("invalid tile map config")
	ErrOutOfGrid = errors.New("tile outside chunk grid")
)

// Config fixes the chunk grid extent at world-generation time.
type Config struct {
	ChunkDim         int32 // tiles per chunk side, power of two
	ChunkCountX      int32
	ChunkCountY      int32
	ChunkCountZ      int32
	TileSideInMeters float32
}

func (c Config) validate() error {
	if !mathx.IsPowerOfTwo(int(c.ChunkDim)) {
		return fmt.Errorf("%w: chunk dim %d is not a power of two", ErrConfig, c.ChunkDim)
	}
	if c.ChunkCountX <= 0 || c.ChunkCountY <= 0 || c.ChunkCountZ <= 0 {
		return fmt.Errorf("%w: chunk counts %dx%dx%d", ErrConfig, c.ChunkCountX, c.ChunkCountY, c.ChunkCountZ)
	}
	if c.TileSideInMeters <= 0 {
		return fmt.Errorf("%w: tile side %v", ErrConfig, c.TileSideInMeters)
	}
	return nil
}

// TileChunk owns the tile values of one chunk. Tiles stays nil until the
// first write inside the chunk.
type TileChunk struct {
	Tiles arena.Span[TileValue]
}

// TileMap is the dense chunk grid.
type TileMap struct {
	arena *arena.Arena

	chunkShift uint
	chunkMask  int32
	chunkDim   int32

	countX, countY, countZ int32
	tileSide               float32

	chunks       arena.Span[TileChunk]
	materialized int
}

// New places the chunk records in a. Tile storage is allocated later, per
// chunk, by SetTileValue.
func New(a *arena.Arena, cfg Config) (*TileMap, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	count := int(cfg.ChunkCountX) * int(cfg.ChunkCountY) * int(cfg.ChunkCountZ)
	chunks, err := arena.PushSlice[TileChunk](a, count)
	if err != nil {
		return nil, fmt.Errorf("tile chunk grid: %w", err)
	}
	return &TileMap{
		arena:      a,
		chunkShift: uint(bits.TrailingZeros32(uint32(cfg.ChunkDim))),
		chunkMask:  cfg.ChunkDim - 1,
		chunkDim:   cfg.ChunkDim,
		countX:     cfg.ChunkCountX,
		countY:     cfg.ChunkCountY,
		countZ:     cfg.ChunkCountZ,
		tileSide:   cfg.TileSideInMeters,
		chunks:     chunks,
	}, nil
}

func (m *TileMap) TileSideInMeters() float32 { return m.tileSide }
func (m *TileMap) ChunkDim() int32           { return m.chunkDim }

// MaterializedChunks returns how many chunks have tile storage.
func (m *TileMap) MaterializedChunks() int { return m.materialized }

// Extent returns the tile counts covered by the grid on each axis.
func (m *TileMap) Extent() (x, y, z int32) {
	return m.countX * m.chunkDim, m.countY * m.chunkDim, m.countZ
}

// chunk returns the record for chunk coordinates, or nil outside the grid.
func (m *TileMap) chunk(cx, cy, cz int32) *TileChunk {
	if cx < 0 || cx >= m.countX || cy < 0 || cy >= m.countY || cz < 0 || cz >= m.countZ {
		return nil
	}
	idx := (cz*m.countY+cy)*m.countX + cx
	return &arena.Slice(m.arena, m.chunks)[idx]
}

// locate splits absolute tile coordinates into a chunk and an index into
// that chunk's tiles. Negative coordinates shift to negative chunks and so
// fall outside the grid.
func (m *TileMap) locate(absX, absY, absZ int32) (*TileChunk, int) {
	c := m.chunk(absX>>m.chunkShift, absY>>m.chunkShift, absZ)
	if c == nil {
		return nil, 0
	}
	relX := absX & m.chunkMask
	relY := absY & m.chunkMask
	return c, int(relY*m.chunkDim + relX)
}

// GetTileValue returns false when the chunk is outside the grid or has
// never been written.
func (m *TileMap) GetTileValue(absX, absY, absZ int32) (TileValue, bool) {
	c, idx := m.locate(absX, absY, absZ)
	if c == nil || c.Tiles.IsNil() {
		return 0, false
	}
	return arena.Slice(m.arena, c.Tiles)[idx], true
}

// SetTileValue writes one tile, materializing the chunk's storage on first
// write. Writing outside the grid is a world-generation error.
func (m *TileMap) SetTileValue(absX, absY, absZ int32, v TileValue) error {
	c, idx := m.locate(absX, absY, absZ)
	if c == nil {
		return fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfGrid, absX, absY, absZ)
	}
	if c.Tiles.IsNil() {
		tiles, err := arena.PushSlice[TileValue](m.arena, int(m.chunkDim*m.chunkDim))
		if err != nil {
			return fmt.Errorf("materialize tile chunk for (%d, %d, %d): %w", absX, absY, absZ, err)
		}
		c.Tiles = tiles
		m.materialized++
	}
	arena.Slice(m.arena, c.Tiles)[idx] = v
	return nil
}

// IsTileValueEmpty reports whether v can be walked on.
func IsTileValueEmpty(v TileValue) bool {
	return v != TileBlocking
}

// IsPointEmpty treats tiles off the generated map as blocked.
func (m *TileMap) IsPointEmpty(p Position) bool {
	v, ok := m.GetTileValue(p.AbsTileX, p.AbsTileY, p.AbsTileZ)
	if !ok {
		return false
	}
	return IsTileValueEmpty(v)
}
