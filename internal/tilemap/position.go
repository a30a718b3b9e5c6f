package tilemap

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/mathx"
)

// Position addresses a point as an absolute tile plus an offset in meters
// from that tile's centre. The offset is kept canonical.
type Position struct {
	AbsTileX int32
	AbsTileY int32
	AbsTileZ int32
	Offset   mgl32.Vec2
}

// Recanonicalize carries the offset into the tile coordinates on x and y.
func (m *TileMap) Recanonicalize(p Position) Position {
	mathx.CanonicalizeCoord(m.tileSide, &p.AbsTileX, &p.Offset[0])
	mathx.CanonicalizeCoord(m.tileSide, &p.AbsTileY, &p.Offset[1])
	return p
}

// Offset moves p by d meters and recanonicalizes.
func (m *TileMap) Offset(p Position, d mgl32.Vec2) Position {
	p.Offset = p.Offset.Add(d)
	return m.Recanonicalize(p)
}

// Subtract returns a-b in meters on x and y. The integer delta is taken
// before conversion so large coordinates keep their precision.
func (m *TileMap) Subtract(a, b Position) mgl32.Vec2 {
	dTile := mgl32.Vec2{float32(a.AbsTileX - b.AbsTileX), float32(a.AbsTileY - b.AbsTileY)}
	return dTile.Mul(m.tileSide).Add(a.Offset.Sub(b.Offset))
}

func AreOnSameTile(a, b Position) bool {
	return a.AbsTileX == b.AbsTileX && a.AbsTileY == b.AbsTileY && a.AbsTileZ == b.AbsTileZ
}

// IsCanonical reports whether both offset axes are within half a tile.
func (m *TileMap) IsCanonical(p Position) bool {
	return mathx.IsCanonical(m.tileSide, p.Offset.X()) && mathx.IsCanonical(m.tileSide, p.Offset.Y())
}
