package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/tilequest/worldsim/internal/core/event"
	coresys "github.com/tilequest/worldsim/internal/core/system"
)

// EventSystem delivers the events emitted during the previous frame.
// Phase 1 (PreUpdate).
type EventSystem struct {
	bus   *event.Bus
	state *FrameState
	log   *zap.Logger
}

func NewEventSystem(bus *event.Bus, state *FrameState, log *zap.Logger) *EventSystem {
	s := &EventSystem{bus: bus, state: state, log: log}
	event.Subscribe(bus, func(e event.EntityChunkChanged) {
		state.Stats.Crossings++
		log.Debug("entity changed chunk",
			zap.Uint32("entity", e.StorageIndex),
			zap.Stringer("type", e.Type),
			zap.Int32s("from", []int32{e.From.ChunkX, e.From.ChunkY, e.From.ChunkZ}),
			zap.Int32s("to", []int32{e.To.ChunkX, e.To.ChunkY, e.To.ChunkZ}),
		)
	})
	event.Subscribe(bus, func(e event.SwordThrown) {
		log.Debug("sword thrown", zap.Uint32("hero", e.Hero), zap.Uint32("sword", e.Sword))
	})
	event.Subscribe(bus, func(e event.SwordExpired) {
		log.Debug("sword expired", zap.Uint32("sword", e.Sword))
	})
	return s
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.state.Stats.Events += uint64(s.bus.DispatchAll())
}
