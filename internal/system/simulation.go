package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	coresys "github.com/tilequest/worldsim/internal/core/system"
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/mathx"
	"github.com/tilequest/worldsim/internal/sim"
)

// SimulationSystem runs one begin_sim / update / end_sim cycle around the
// camera. The region lives in a temporary block of transient memory that is
// released before the system returns. Phase 2 (Update).
type SimulationSystem struct {
	state       *FrameState
	halfDim     mgl32.Vec2
	maxEntities int
	log         *zap.Logger
}

// NewSimulationSystem simulates a rectangle of 2*halfDim meters around the
// camera holding at most maxEntities entities.
func NewSimulationSystem(state *FrameState, halfDim mgl32.Vec2, maxEntities int, log *zap.Logger) *SimulationSystem {
	return &SimulationSystem{state: state, halfDim: halfDim, maxEntities: maxEntities, log: log}
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SimulationSystem) Update(dt time.Duration) {
	st := s.state
	step := st.Input.DtForFrame
	if step <= 0 {
		step = float32(dt.Seconds())
	}

	tmp := st.Transient.BeginTemporary()
	defer tmp.End()

	bounds := mathx.RectCenterHalfDim(mgl32.Vec2{}, s.halfDim)
	region, err := sim.BeginSim(st.Sim, st.Transient, st.Camera, bounds, s.maxEntities)
	if err != nil {
		s.log.Error("begin sim failed", zap.Error(err))
		return
	}

	updated := 0
	ents := region.Entities()
	for i := range ents {
		e := &ents[i]
		if !e.Updatable {
			continue
		}
		updated++
		switch e.Type {
		case entity.TypeHero:
			updateHero(region, st, e, step)
		case entity.TypeSword:
			updateSword(region, st, e, step)
		case entity.TypeFamiliar:
			updateFamiliar(region, e, step)
		case entity.TypeMonster:
			updateMonster(region, e, step)
		}
	}

	st.visible = append(st.visible[:0], ents...)
	if err := sim.EndSim(region); err != nil {
		s.log.Error("end sim failed", zap.Error(err))
	}

	st.Stats.Frames++
	st.Stats.Simulated = len(ents)
	st.Stats.Updated = updated
}

// CameraSystem moves the camera onto the committed position of the entity
// it follows. Phase 3 (PostUpdate).
type CameraSystem struct {
	state *FrameState
}

func NewCameraSystem(state *FrameState) *CameraSystem {
	return &CameraSystem{state: state}
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CameraSystem) Update(_ time.Duration) {
	if s.state.CameraFollow == 0 {
		return
	}
	stored := s.state.Sim.Entities.Get(s.state.CameraFollow)
	if stored == nil || !stored.P.IsValid() {
		return
	}
	s.state.Camera = stored.P
}

// CleanupSystem verifies that every temporary block of transient memory
// opened during the frame was closed. Phase 4 (Cleanup).
type CleanupSystem struct {
	state *FrameState
	log   *zap.Logger
}

func NewCleanupSystem(state *FrameState, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{state: state, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if err := s.state.Transient.CheckClean(); err != nil {
		s.log.Error("transient memory leaked across frame", zap.Error(err))
	}
}
