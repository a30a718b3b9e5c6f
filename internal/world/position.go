package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/mathx"
	"github.com/tilequest/worldsim/internal/tilemap"
)

// Position addresses a point as a chunk plus an offset in meters from the
// chunk centre. The offset is kept canonical (within half a chunk).
type Position struct {
	ChunkX int32
	ChunkY int32
	ChunkZ int32
	Offset mgl32.Vec2
}

// Diff is the distance between two positions in meters.
type Diff struct {
	DXY mgl32.Vec2
	DZ  float32
}

// NullPosition is the position of an entity that is not in any chunk.
func NullPosition() Position {
	return Position{ChunkX: ChunkUnset}
}

func (p Position) IsValid() bool {
	return p.ChunkX != ChunkUnset
}

func AreInSameChunk(a, b Position) bool {
	return a.ChunkX == b.ChunkX && a.ChunkY == b.ChunkY && a.ChunkZ == b.ChunkZ
}

// CenteredChunkPoint returns the centre of a chunk.
func CenteredChunkPoint(cx, cy, cz int32) Position {
	return Position{ChunkX: cx, ChunkY: cy, ChunkZ: cz}
}

func (w *World) Recanonicalize(p Position) Position {
	mathx.CanonicalizeCoord(w.chunkSide, &p.ChunkX, &p.Offset[0])
	mathx.CanonicalizeCoord(w.chunkSide, &p.ChunkY, &p.Offset[1])
	return p
}

func (w *World) IsCanonical(p Position) bool {
	return mathx.IsCanonical(w.chunkSide, p.Offset.X()) && mathx.IsCanonical(w.chunkSide, p.Offset.Y())
}

// MapIntoChunkSpace returns base moved by offset meters, recanonicalized.
func (w *World) MapIntoChunkSpace(base Position, offset mgl32.Vec2) Position {
	base.Offset = base.Offset.Add(offset)
	return w.Recanonicalize(base)
}

// Subtract returns a-b. The chunk delta is taken in integers first; only the
// (bounded) result is converted to float.
func (w *World) Subtract(a, b Position) Diff {
	dChunk := mgl32.Vec2{float32(a.ChunkX - b.ChunkX), float32(a.ChunkY - b.ChunkY)}
	return Diff{
		DXY: dChunk.Mul(w.chunkSide).Add(a.Offset.Sub(b.Offset)),
		DZ:  float32(a.ChunkZ-b.ChunkZ) * w.chunkSide,
	}
}

// ChunkPositionFromTilePosition converts the centre of an absolute tile,
// moved by offset meters, into a world position. Tile z maps to chunk z.
func (w *World) ChunkPositionFromTilePosition(tx, ty, tz int32, offset mgl32.Vec2) Position {
	cx := mathx.FloorDiv(tx, w.tilesPerChunk)
	cy := mathx.FloorDiv(ty, w.tilesPerChunk)
	half := 0.5 * w.chunkSide
	p := Position{
		ChunkX: cx,
		ChunkY: cy,
		ChunkZ: tz,
		Offset: mgl32.Vec2{
			(float32(tx-cx*w.tilesPerChunk)+0.5)*w.tileSide - half,
			(float32(ty-cy*w.tilesPerChunk)+0.5)*w.tileSide - half,
		}.Add(offset),
	}
	return w.Recanonicalize(p)
}

// TilePosition converts p into tile-map addressing. The tile index is
// derived from the chunk index in integers so it stays exact far from the
// origin.
func (w *World) TilePosition(p Position) tilemap.Position {
	half := 0.5 * w.chunkSide
	rx := p.Offset.X() + half
	ry := p.Offset.Y() + half
	lx := mathx.FloorToInt32(rx / w.tileSide)
	ly := mathx.FloorToInt32(ry / w.tileSide)

	tp := tilemap.Position{
		AbsTileX: p.ChunkX*w.tilesPerChunk + lx,
		AbsTileY: p.ChunkY*w.tilesPerChunk + ly,
		AbsTileZ: p.ChunkZ,
		Offset: mgl32.Vec2{
			rx - (float32(lx)+0.5)*w.tileSide,
			ry - (float32(ly)+0.5)*w.tileSide,
		},
	}
	mathx.CanonicalizeCoord(w.tileSide, &tp.AbsTileX, &tp.Offset[0])
	mathx.CanonicalizeCoord(w.tileSide, &tp.AbsTileY, &tp.Offset[1])
	return tp
}
