package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/mathx"
	"github.com/tilequest/worldsim/internal/sim"
)

const (
	// FamiliarSight is how close a hero must be for a familiar to notice it.
	FamiliarSight = 10.0
	// FamiliarKeepAway is the distance a familiar stops at.
	FamiliarKeepAway = 3.0
)

var familiarMove = sim.MoveSpec{UnitMaxAccelVector: true, Speed: 50, Drag: 8}

func updateFamiliar(r *sim.Region, e *entity.Sim, dt float32) {
	var closest *entity.Sim
	bestSq := float32(FamiliarSight * FamiliarSight)
	ents := r.Entities()
	for i := range ents {
		other := &ents[i]
		if other.Type != entity.TypeHero || other.Flags.Has(entity.FlagNonspatial) {
			continue
		}
		d := other.P.Sub(e.P)
		if dSq := d.Dot(d); dSq < bestSq {
			bestSq = dSq
			closest = other
		}
	}

	var ddP mgl32.Vec2
	if closest != nil && bestSq > mathx.Square(FamiliarKeepAway) {
		ddP = closest.P.Sub(e.P).Mul(1 / mathx.SquareRoot(bestSq))
	}

	e.TBob += dt
	if e.TBob > 2*math.Pi {
		e.TBob -= 2 * math.Pi
	}
	r.MoveEntity(e, ddP, familiarMove, dt)
}
