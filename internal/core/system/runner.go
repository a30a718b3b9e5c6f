package system

import (
	"slices"
	"time"
)

// Runner executes systems in phase order each frame. Systems sharing a phase
// run in registration order. It also keeps the wall time spent per phase.
type Runner struct {
	systems []System
	sorted  bool

	now     func() time.Time
	elapsed [phaseCount]time.Duration
	runs    [phaseCount]uint64
	frames  uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
		now:     time.Now,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Len() int { return len(r.systems) }

// Tick runs one frame: every system, phase by phase.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.run(s, dt)
	}
	r.frames++
}

// TickPhase runs only the systems of one phase. It does not count as a
// frame.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.run(s, dt)
		}
	}
}

func (r *Runner) run(s System, dt time.Duration) {
	start := r.now()
	s.Update(dt)
	if p := s.Phase(); p >= 0 && p < phaseCount {
		r.elapsed[p] += r.now().Sub(start)
		r.runs[p]++
	}
}

// PhaseTiming is the accumulated wall time of one phase.
type PhaseTiming struct {
	Phase   Phase
	Total   time.Duration
	PerTick time.Duration // Total averaged over full ticks
}

// Timings reports every phase that ran at least once, in phase order.
func (r *Runner) Timings() []PhaseTiming {
	var out []PhaseTiming
	for p := Phase(0); p < phaseCount; p++ {
		if r.runs[p] == 0 {
			continue
		}
		t := PhaseTiming{Phase: p, Total: r.elapsed[p]}
		if r.frames > 0 {
			t.PerTick = r.elapsed[p] / time.Duration(r.frames)
		}
		out = append(out, t)
	}
	return out
}

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	slices.SortStableFunc(r.systems, func(a, b System) int {
		return int(a.Phase()) - int(b.Phase())
	})
	r.sorted = true
}
