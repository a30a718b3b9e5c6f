package system

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tilequest/worldsim/internal/core/arena"
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/input"
	"github.com/tilequest/worldsim/internal/sim"
	"github.com/tilequest/worldsim/internal/world"
)

// Control is what one controller asks its hero to do this frame.
type Control struct {
	Hero   uint32 // storage index, 0 = no hero yet
	DDP    mgl32.Vec2
	DSword mgl32.Vec2
	Jump   float32
}

// FrameStats counts work done by the last simulated frame.
type FrameStats struct {
	Frames    uint64
	Simulated int
	Updated   int
	Crossings uint64
	Events    uint64 // events delivered, all types
}

// FrameState is the state the frame systems share. It is owned by the game
// and touched from the frame goroutine only.
type FrameState struct {
	Sim       sim.Deps
	Transient *arena.Arena

	Input    input.Frame
	Controls [input.ControllerCount]Control

	Camera       world.Position
	CameraFollow uint32

	Stats FrameStats

	visible []entity.Sim
}

// ControlFor returns the control bound to hero, or nil.
func (s *FrameState) ControlFor(hero uint32) *Control {
	if hero == 0 {
		return nil
	}
	for i := range s.Controls {
		if s.Controls[i].Hero == hero {
			return &s.Controls[i]
		}
	}
	return nil
}

// Visible walks the entities of the last committed camera region. Positions
// are relative to the camera at the time the region was built. fn returning
// false stops the walk.
func (s *FrameState) Visible(fn func(e *entity.Sim) bool) {
	for i := range s.visible {
		if !fn(&s.visible[i]) {
			return
		}
	}
}
