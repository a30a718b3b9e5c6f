package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutopilotJoinsThenWalks(t *testing.T) {
	p := newAutopilot(1.0 / 30)

	f := p.next()
	assert.True(t, f.Controllers[0].IsConnected)
	assert.True(t, f.Controllers[0].Start.WasPressed())
	assert.False(t, f.Controllers[0].MoveRight.EndedDown)

	f = p.next()
	assert.False(t, f.Controllers[0].Start.EndedDown)
	assert.True(t, f.Controllers[0].MoveRight.EndedDown)

	for i := 2; i < legFrames; i++ {
		f = p.next()
	}
	assert.True(t, f.Controllers[0].ActionRight.WasPressed(), "throws at the end of a leg")

	f = p.next()
	assert.True(t, f.Controllers[0].MoveUp.EndedDown)
	assert.False(t, f.Controllers[0].MoveRight.EndedDown)
	assert.InDelta(t, 1.0/30, f.DtForFrame, 1e-6)
}
