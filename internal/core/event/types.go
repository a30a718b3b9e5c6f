package event

import (
	"github.com/tilequest/worldsim/internal/entity"
	"github.com/tilequest/worldsim/internal/world"
)

// EntityChunkChanged is emitted by EndSim when a commit moved an entity's
// chunk membership, including moves into or out of the non-spatial state.
type EntityChunkChanged struct {
	StorageIndex uint32
	Type         entity.Type
	From         world.Position
	To           world.Position
}

// SwordThrown is emitted when a hero launches its sword.
type SwordThrown struct {
	Hero  uint32
	Sword uint32
}

// SwordExpired is emitted when a sword runs out of distance.
type SwordExpired struct {
	Sword uint32
}
