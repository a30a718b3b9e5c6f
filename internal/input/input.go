// Package input is the per-frame input snapshot handed to the game by its
// host. The host fills a Frame from whatever devices it polls; the game only
// reads it.
package input

// ControllerCount is the number of controller slots in a frame: slot 0 is
// the keyboard, the rest are gamepads.
const ControllerCount = 5

// Button is one digital button over a frame.
type Button struct {
	HalfTransitionCount int32
	EndedDown           bool
}

// WasPressed reports whether the button went down at least once during the
// frame.
func (b Button) WasPressed() bool {
	return b.HalfTransitionCount > 1 || (b.HalfTransitionCount == 1 && b.EndedDown)
}

// Controller is one input device.
type Controller struct {
	IsConnected bool
	IsAnalog    bool

	StickAverageX float32
	StickAverageY float32

	MoveUp    Button
	MoveDown  Button
	MoveLeft  Button
	MoveRight Button

	ActionUp    Button
	ActionDown  Button
	ActionLeft  Button
	ActionRight Button

	LeftShoulder  Button
	RightShoulder Button

	Back  Button
	Start Button
}

// Frame is the input snapshot for one frame.
type Frame struct {
	DtForFrame  float32
	Controllers [ControllerCount]Controller
}

// Controller returns the controller in slot i, or nil when i is out of range.
func (f *Frame) Controller(i int) *Controller {
	if i < 0 || i >= ControllerCount {
		return nil
	}
	return &f.Controllers[i]
}

// Press marks b as pressed and held for the whole frame.
func (b *Button) Press() {
	if !b.EndedDown {
		b.HalfTransitionCount++
	}
	b.EndedDown = true
}

// Release marks b as released.
func (b *Button) Release() {
	if b.EndedDown {
		b.HalfTransitionCount++
	}
	b.EndedDown = false
}

// NextFrame carries the held state into a new frame with the transition
// counts reset.
func (f *Frame) NextFrame(dt float32) Frame {
	next := *f
	next.DtForFrame = dt
	for i := range next.Controllers {
		c := &next.Controllers[i]
		for _, b := range c.buttons() {
			b.HalfTransitionCount = 0
		}
	}
	return next
}

func (c *Controller) buttons() []*Button {
	return []*Button{
		&c.MoveUp, &c.MoveDown, &c.MoveLeft, &c.MoveRight,
		&c.ActionUp, &c.ActionDown, &c.ActionLeft, &c.ActionRight,
		&c.LeftShoulder, &c.RightShoulder, &c.Back, &c.Start,
	}
}
