// Package entity defines the persistent record of every entity and the
// simulation copy a region works on for one frame.
package entity

import "github.com/go-gl/mathgl/mgl32"

type Type uint32

const (
	TypeNull Type = iota
	TypeHero
	TypeWall
	TypeFamiliar
	TypeMonster
	TypeSword
)

func (t Type) String() string {
	switch t {
	case TypeHero:
		return "hero"
	case TypeWall:
		return "wall"
	case TypeFamiliar:
		return "familiar"
	case TypeMonster:
		return "monster"
	case TypeSword:
		return "sword"
	default:
		return "null"
	}
}

// ParseType maps a layout or script name to a Type.
func ParseType(name string) (Type, bool) {
	switch name {
	case "hero":
		return TypeHero, true
	case "wall":
		return TypeWall, true
	case "familiar":
		return TypeFamiliar, true
	case "monster":
		return TypeMonster, true
	case "sword":
		return TypeSword, true
	}
	return TypeNull, false
}

type Flags uint32

const (
	FlagCollides Flags = 1 << iota
	FlagNonspatial
)

func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// InvalidP is the region-local position given to non-spatial entities.
var InvalidP = mgl32.Vec2{100000, 100000}

// Sim is the per-frame working copy of an entity. Positions are in meters
// relative to the region origin.
type Sim struct {
	StorageIndex uint32
	Type         Type
	Flags        Flags
	Updatable    bool

	P  mgl32.Vec2
	DP mgl32.Vec2
	Z  float32
	DZ float32

	Width  float32
	Height float32

	FacingDirection uint32 // 0 east, 1 north, 2 west, 3 south
	TBob            float32

	HitPoints    uint32
	MaxHitPoints uint32

	DistanceRemaining float32
	Sword             uint32 // storage index, 0 = none
}

func (e *Sim) MakeNonSpatial() {
	e.Flags |= FlagNonspatial
	e.P = InvalidP
}

func (e *Sim) MakeSpatial(p, dp mgl32.Vec2) {
	e.Flags &^= FlagNonspatial
	e.P = p
	e.DP = dp
}
