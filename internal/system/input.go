package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	coresys "github.com/tilequest/worldsim/internal/core/system"
	"github.com/tilequest/worldsim/internal/input"
)

// JumpVelocity is the upward speed given to a hero on Start.
const JumpVelocity = 3.0

// SpawnFunc adds a hero for a controller and returns its storage index.
type SpawnFunc func(controller int) (uint32, error)

// InputSystem turns the frame's input snapshot into hero controls. A
// controller without a hero gets one when Start is pressed. Phase 0 (Input).
type InputSystem struct {
	state *FrameState
	spawn SpawnFunc
	log   *zap.Logger
}

func NewInputSystem(state *FrameState, spawn SpawnFunc, log *zap.Logger) *InputSystem {
	return &InputSystem{state: state, spawn: spawn, log: log}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := range s.state.Input.Controllers {
		c := &s.state.Input.Controllers[i]
		ctl := &s.state.Controls[i]
		*ctl = Control{Hero: ctl.Hero}
		if !c.IsConnected {
			continue
		}

		if ctl.Hero == 0 {
			if !c.Start.WasPressed() || s.spawn == nil {
				continue
			}
			idx, err := s.spawn(i)
			if err != nil {
				s.log.Warn("spawn hero failed", zap.Int("controller", i), zap.Error(err))
				continue
			}
			ctl.Hero = idx
			if s.state.CameraFollow == 0 {
				s.state.CameraFollow = idx
			}
			s.log.Info("hero joined", zap.Int("controller", i), zap.Uint32("entity", idx))
			continue
		}

		ctl.DDP = moveVector(c)
		if c.Start.EndedDown {
			ctl.Jump = JumpVelocity
		}
		switch {
		case c.ActionUp.EndedDown:
			ctl.DSword = mgl32.Vec2{0, 1}
		case c.ActionDown.EndedDown:
			ctl.DSword = mgl32.Vec2{0, -1}
		case c.ActionLeft.EndedDown:
			ctl.DSword = mgl32.Vec2{-1, 0}
		case c.ActionRight.EndedDown:
			ctl.DSword = mgl32.Vec2{1, 0}
		}
	}
}

func moveVector(c *input.Controller) mgl32.Vec2 {
	if c.IsAnalog {
		return mgl32.Vec2{c.StickAverageX, c.StickAverageY}
	}
	var v mgl32.Vec2
	if c.MoveUp.EndedDown {
		v[1] = 1
	}
	if c.MoveDown.EndedDown {
		v[1] = -1
	}
	if c.MoveLeft.EndedDown {
		v[0] = -1
	}
	if c.MoveRight.EndedDown {
		v[0] = 1
	}
	return v
}
