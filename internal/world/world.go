// Package world maps chunk coordinates to chunk records through a fixed-size
// chained hash table. Each chunk owns a chain of entity blocks listing the
// storage indices of the entities inside it.
//
// Chunks and blocks live in the world arena and link to each other through
// arena handles. Chunks are never removed; emptied overflow blocks go to a
// free list and are reused before the arena is touched again.
//
// Accessed only from the simulation goroutine; there are no locks.
package world

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tilequest/worldsim/internal/core/arena"
	"github.com/tilequest/worldsim/internal/mathx"
)

const (
	// EntityBlockCapacity is the number of entity indices held by one block.
	EntityBlockCapacity = 16

	// MaxTilesPerChunk caps the chunk side so that absolute tile indices of
	// chunks inside the guard band fit in int32.
	MaxTilesPerChunk = 64

	// ChunkSafeMargin bounds chunk coordinates so that tile indices and
	// coordinate differences stay inside int32.
	ChunkSafeMargin = math.MaxInt32 / MaxTilesPerChunk

	// ChunkUnset marks the null position of a non-spatial entity.
	ChunkUnset = math.MaxInt32
)

var (
	ErrConfig           = errors.New("invalid world config")
	ErrOutOfWorld       = errors.New("chunk outside world extent")
	ErrEntityNotInChunk = errors.New("entity not recorded in chunk")
)

// Config fixes the world's geometry and hash table size.
type Config struct {
	TileSideInMeters float32
	TilesPerChunk    int32
	BucketCount      int // power of two
}

// EntityBlock is a fixed-capacity run of storage indices.
type EntityBlock struct {
	Count   uint32
	Entries [EntityBlockCapacity]uint32
	Next    arena.Ref[EntityBlock]
}

// Chunk is one hash table entry. FirstBlock is stored inline; overflow
// blocks chain from it.
type Chunk struct {
	X, Y, Z    int32
	FirstBlock EntityBlock
	Next       arena.Ref[Chunk]
}

// ChunkRef is a handle to a chunk, valid for the world's lifetime.
type ChunkRef = arena.Ref[Chunk]

// Stats counts structural changes since the world was created.
type Stats struct {
	Chunks          int
	BlocksAllocated int
	BlocksReused    int
	BlocksFreed     int
}

type World struct {
	log   *zap.Logger
	arena *arena.Arena

	tileSide      float32
	chunkSide     float32
	tilesPerChunk int32

	buckets    arena.Span[ChunkRef]
	bucketMask uint32
	firstFree  arena.Ref[EntityBlock]

	stats Stats
}

// New places the bucket array in a. Chunks and blocks are carved from the
// same arena as they are needed.
func New(a *arena.Arena, cfg Config, log *zap.Logger) (*World, error) {
	if !mathx.IsPowerOfTwo(cfg.BucketCount) {
		return nil, fmt.Errorf("%w: bucket count %d is not a power of two", ErrConfig, cfg.BucketCount)
	}
	if cfg.TilesPerChunk <= 0 || cfg.TilesPerChunk > MaxTilesPerChunk || cfg.TileSideInMeters <= 0 {
		return nil, fmt.Errorf("%w: %d tiles per chunk, tile side %v", ErrConfig, cfg.TilesPerChunk, cfg.TileSideInMeters)
	}
	buckets, err := arena.PushSlice[ChunkRef](a, cfg.BucketCount)
	if err != nil {
		return nil, fmt.Errorf("chunk hash: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		log:           log,
		arena:         a,
		tileSide:      cfg.TileSideInMeters,
		chunkSide:     float32(cfg.TilesPerChunk) * cfg.TileSideInMeters,
		tilesPerChunk: cfg.TilesPerChunk,
		buckets:       buckets,
		bucketMask:    uint32(cfg.BucketCount - 1),
	}, nil
}

func (w *World) TileSideInMeters() float32  { return w.tileSide }
func (w *World) ChunkSideInMeters() float32 { return w.chunkSide }
func (w *World) TilesPerChunk() int32       { return w.tilesPerChunk }
func (w *World) Stats() Stats               { return w.stats }

func inGuardBand(c int32) bool {
	return c > -ChunkSafeMargin && c < ChunkSafeMargin
}

// Chunk resolves a handle returned by GetChunk or GetOrCreateChunk.
func (w *World) Chunk(ref ChunkRef) *Chunk {
	return arena.Get(w.arena, ref)
}

// GetChunk looks up an existing chunk. It never creates one.
func (w *World) GetChunk(cx, cy, cz int32) (ChunkRef, bool) {
	if !inGuardBand(cx) || !inGuardBand(cy) || !inGuardBand(cz) {
		return 0, false
	}
	slot := mathx.ChunkHash(cx, cy, cz, w.bucketMask)
	for ref := arena.Slice(w.arena, w.buckets)[slot]; !ref.IsNil(); {
		c := arena.Get(w.arena, ref)
		if c.X == cx && c.Y == cy && c.Z == cz {
			return ref, true
		}
		ref = c.Next
	}
	return 0, false
}

// GetOrCreateChunk returns the chunk at the coordinates, allocating it at the
// head of its bucket chain when absent.
func (w *World) GetOrCreateChunk(cx, cy, cz int32) (ChunkRef, error) {
	if ref, ok := w.GetChunk(cx, cy, cz); ok {
		return ref, nil
	}
	if !inGuardBand(cx) || !inGuardBand(cy) || !inGuardBand(cz) {
		return 0, fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfWorld, cx, cy, cz)
	}
	ref, err := arena.Push[Chunk](w.arena)
	if err != nil {
		return 0, fmt.Errorf("create chunk (%d, %d, %d): %w", cx, cy, cz, err)
	}
	slot := mathx.ChunkHash(cx, cy, cz, w.bucketMask)
	buckets := arena.Slice(w.arena, w.buckets)

	c := arena.Get(w.arena, ref)
	c.X, c.Y, c.Z = cx, cy, cz
	c.Next = buckets[slot]
	buckets[slot] = ref
	w.stats.Chunks++

	w.log.Debug("chunk created",
		zap.Int32("x", cx), zap.Int32("y", cy), zap.Int32("z", cz),
		zap.Uint32("bucket", slot))
	return ref, nil
}

// Chunks visits every chunk in bucket order.
func (w *World) Chunks(fn func(ref ChunkRef, c *Chunk)) {
	for _, head := range arena.Slice(w.arena, w.buckets) {
		for ref := head; !ref.IsNil(); {
			c := arena.Get(w.arena, ref)
			fn(ref, c)
			ref = c.Next
		}
	}
}
