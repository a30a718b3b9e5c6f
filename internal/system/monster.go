package system

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/sim"
)

// Monsters stand still; only gravity acts on them.
func updateMonster(r *sim.Region, e *entity.Sim, dt float32) {
	r.MoveEntity(e, mgl32.Vec2{}, sim.MoveSpec{}, dt)
}
