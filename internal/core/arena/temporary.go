package arena

import "fmt"

// Temporary marks a rewind point. Everything pushed after BeginTemporary is
// released by End, in LIFO order with other temporaries.
type Temporary struct {
	arena  *Arena
	used   int
	allocs int
}

func (a *Arena) BeginTemporary() Temporary {
	a.tempCount++
	return Temporary{arena: a, used: a.used, allocs: a.allocs}
}

// End rewinds the arena to the mark taken by BeginTemporary.
func (t Temporary) End() {
	a := t.arena
	if a == nil {
		return
	}
	if a.used < t.used {
		panic(fmt.Sprintf("arena %s: temporary ended after reset (used %d < mark %d)", a.name, a.used, t.used))
	}
	a.used = t.used
	a.allocs = t.allocs
	a.tempCount--
}

// CheckClean reports temporaries that were begun but never ended.
func (a *Arena) CheckClean() error {
	if a.tempCount != 0 {
		return fmt.Errorf("%w: %s has %d open", ErrUnbalancedTemporary, a.name, a.tempCount)
	}
	return nil
}
