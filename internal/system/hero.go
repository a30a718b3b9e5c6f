package system

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/core/event"
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/sim"
)

// HeroMove is how a controlled hero accelerates.
var HeroMove = sim.MoveSpec{UnitMaxAccelVector: true, Speed: 50, Drag: 8}

// SwordRange is how far a thrown sword flies, in meters.
const SwordRange = 5.0

// swordSpeed is in m/s.
const swordSpeed = 5.0

func updateHero(r *sim.Region, st *FrameState, e *entity.Sim, dt float32) {
	ctl := st.ControlFor(e.StorageIndex)
	if ctl == nil {
		r.MoveEntity(e, mgl32.Vec2{}, HeroMove, dt)
		return
	}
	if ctl.Jump != 0 && e.Z == 0 {
		e.DZ = ctl.Jump
	}
	if ctl.DSword != (mgl32.Vec2{}) && e.Sword != 0 {
		if sword, ok := r.Get(e.Sword); ok && sword.Flags.Has(entity.FlagNonspatial) {
			sword.DistanceRemaining = SwordRange
			sword.MakeSpatial(e.P, ctl.DSword.Mul(swordSpeed))
			event.Emit(st.Sim.Bus, event.SwordThrown{Hero: e.StorageIndex, Sword: e.Sword})
		}
	}
	r.MoveEntity(e, ctl.DDP, HeroMove, dt)
}
