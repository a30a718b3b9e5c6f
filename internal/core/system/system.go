package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: translate the input snapshot into commands
	PhasePreUpdate               // 1: deliver last frame's events
	PhaseUpdate                  // 2: begin_sim, behaviors, end_sim
	PhasePostUpdate              // 3: camera follow, stats
	PhaseCleanup                 // 4: transient memory checks

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is one step of the frame pipeline.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
