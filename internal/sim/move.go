package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/mathx"
)

// Gravity applied to Z, in m/s².
const Gravity = -9.8

// footprintInset keeps an entity flush against a wall from testing the
// tile on the other side of the shared edge.
const footprintInset = 1e-3

// MoveSpec shapes how requested acceleration turns into motion.
type MoveSpec struct {
	UnitMaxAccelVector bool
	Speed              float32
	Drag               float32
}

// MoveEntity integrates e over dt with semi-implicit Euler and returns the
// distance actually travelled on the ground plane.
//
// Motion is resolved one axis at a time in sub-steps of at most half a
// tile. A sub-step whose footprint would touch a blocking tile is rejected
// and that axis's velocity is zeroed, so the entity slides along walls.
func (r *Region) MoveEntity(e *entity.Sim, ddP mgl32.Vec2, spec MoveSpec, dt float32) float32 {
	if e.Flags.Has(entity.FlagNonspatial) {
		return 0
	}
	if spec.UnitMaxAccelVector {
		if l2 := ddP.Dot(ddP); l2 > 1 {
			ddP = ddP.Mul(1 / mathx.SquareRoot(l2))
		}
	}
	ddP = ddP.Mul(spec.Speed)

	e.DP = e.DP.Add(ddP.Mul(dt))
	e.DP = e.DP.Sub(e.DP.Mul(spec.Drag * dt))
	delta := e.DP.Mul(dt)

	e.DZ += Gravity * dt
	e.Z += e.DZ * dt
	if e.Z < 0 {
		e.Z = 0
		e.DZ = 0
	}

	start := e.P
	if !e.Flags.Has(entity.FlagCollides) || r.deps.Tiles == nil {
		e.P = e.P.Add(delta)
	} else {
		step := 0.5 * r.deps.World.TileSideInMeters()
		steps := int(math.Ceil(float64(max(mathx.AbsF32(delta.X()), mathx.AbsF32(delta.Y())) / step)))
		if steps < 1 {
			steps = 1
		}
		sub := delta.Mul(1 / float32(steps))
		blockedX, blockedY := false, false
		for i := 0; i < steps; i++ {
			if !blockedX && sub.X() != 0 {
				if p := e.P.Add(mgl32.Vec2{sub.X(), 0}); r.footprintClear(e, p) {
					e.P = p
				} else {
					blockedX = true
					e.DP[0] = 0
				}
			}
			if !blockedY && sub.Y() != 0 {
				if p := e.P.Add(mgl32.Vec2{0, sub.Y()}); r.footprintClear(e, p) {
					e.P = p
				} else {
					blockedY = true
					e.DP[1] = 0
				}
			}
		}
	}

	updateFacing(e)
	return e.P.Sub(start).Len()
}

// footprintClear tests the four corners of e's footprint at p against the
// tile map.
func (r *Region) footprintClear(e *entity.Sim, p mgl32.Vec2) bool {
	hx := max(0.5*e.Width-footprintInset, 0)
	hy := max(0.5*e.Height-footprintInset, 0)
	corners := [4]mgl32.Vec2{{-hx, -hy}, {hx, -hy}, {-hx, hy}, {hx, hy}}
	w := r.deps.World
	for _, c := range corners {
		wp := w.MapIntoChunkSpace(r.Origin, p.Add(c))
		if !r.deps.Tiles.IsPointEmpty(w.TilePosition(wp)) {
			return false
		}
	}
	return true
}

func updateFacing(e *entity.Sim) {
	dx, dy := e.DP.X(), e.DP.Y()
	if dx == 0 && dy == 0 {
		return
	}
	if mathx.AbsF32(dx) > mathx.AbsF32(dy) {
		if dx > 0 {
			e.FacingDirection = 0
		} else {
			e.FacingDirection = 2
		}
	} else {
		if dy > 0 {
			e.FacingDirection = 1
		} else {
			e.FacingDirection = 3
		}
	}
}
