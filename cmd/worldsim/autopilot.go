package main

import "github.com/tilequest/worldsim/internal/input"

// autopilot stands in for a player when the host runs headless: it joins on
// the first frame, then walks a square and throws the sword at each corner.
type autopilot struct {
	frame input.Frame
	n     int
}

const legFrames = 90

func newAutopilot(dt float32) *autopilot {
	p := &autopilot{}
	p.frame.DtForFrame = dt
	p.frame.Controllers[0].IsConnected = true
	return p
}

func (p *autopilot) next() input.Frame {
	p.frame = p.frame.NextFrame(p.frame.DtForFrame)
	c := &p.frame.Controllers[0]

	if p.n == 0 {
		c.Start.Press()
	} else {
		c.Start.Release()
	}

	leg := (p.n / legFrames) % 4
	moves := [4]*input.Button{&c.MoveRight, &c.MoveUp, &c.MoveLeft, &c.MoveDown}
	throws := [4]*input.Button{&c.ActionRight, &c.ActionUp, &c.ActionLeft, &c.ActionDown}
	for i := range moves {
		if i == leg && p.n > 0 {
			moves[i].Press()
		} else {
			moves[i].Release()
		}
		if i == leg && p.n%legFrames == legFrames-1 {
			throws[i].Press()
		} else {
			throws[i].Release()
		}
	}
	p.n++
	return p.frame
}
