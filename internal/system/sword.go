package system

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/core/event"
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/sim"
)

// A sword keeps its throw velocity until it has used up its range.
func updateSword(r *sim.Region, st *FrameState, e *entity.Sim, dt float32) {
	if e.Flags.Has(entity.FlagNonspatial) {
		return
	}
	moved := r.MoveEntity(e, mgl32.Vec2{}, sim.MoveSpec{}, dt)
	e.DistanceRemaining -= moved
	if e.DistanceRemaining <= 0 {
		e.DistanceRemaining = 0
		e.DP = mgl32.Vec2{}
		e.MakeNonSpatial()
		event.Emit(st.Sim.Bus, event.SwordExpired{Sword: e.StorageIndex})
	}
}
