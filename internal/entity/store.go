package entity

import (
	"errors"
	"fmt"

	"github.com/tilequest/worldsim/internal/core/arena"
	"github.com/tilequest/worldsim/internal/world"
)

var ErrStoreFull = errors.New("entity store full")

// Stored is the persistent record of an entity: its last committed
// simulation state and world position.
type Stored struct {
	Sim Sim
	P   world.Position
}

// Store is a fixed-capacity array of Stored records. Index 0 is the null
// entity and never handed out.
type Store struct {
	arena   *arena.Arena
	entries arena.Span[Stored]
	count   uint32
}

func NewStore(a *arena.Arena, capacity int) (*Store, error) {
	entries, err := arena.PushSlice[Stored](a, capacity+1)
	if err != nil {
		return nil, fmt.Errorf("entity store: %w", err)
	}
	s := &Store{arena: a, entries: entries, count: 1}
	arena.Slice(a, entries)[0].P = world.NullPosition()
	return s, nil
}

// Count returns the number of indices handed out, including the null entity.
func (s *Store) Count() uint32 { return s.count }

func (s *Store) Capacity() int { return s.entries.Len() - 1 }

// Free returns how many more entities Add can record.
func (s *Store) Free() int { return s.entries.Len() - int(s.count) }

// Get returns the record at index, or nil for the null entity and indices
// that were never handed out.
func (s *Store) Get(index uint32) *Stored {
	if index == 0 || index >= s.count {
		return nil
	}
	return &arena.Slice(s.arena, s.entries)[index]
}

// Add records a new entity at p (null for non-spatial) and enters it into
// the world's chunk table.
func (s *Store) Add(w *world.World, sim Sim, p world.Position) (uint32, error) {
	if int(s.count) >= s.entries.Len() {
		return 0, fmt.Errorf("%w: capacity %d", ErrStoreFull, s.Capacity())
	}
	index := s.count
	rec := &arena.Slice(s.arena, s.entries)[index]
	sim.StorageIndex = index
	*rec = Stored{Sim: sim, P: world.NullPosition()}
	if err := s.ChangeLocation(w, index, p); err != nil {
		*rec = Stored{}
		return 0, err
	}
	s.count++
	return index, nil
}

// ChangeLocation moves the entity's chunk membership to newP and records it.
// A null newP marks the entity non-spatial.
func (s *Store) ChangeLocation(w *world.World, index uint32, newP world.Position) error {
	rec := &arena.Slice(s.arena, s.entries)[index]
	var oldP *world.Position
	if rec.P.IsValid() {
		old := rec.P
		oldP = &old
	}
	if err := w.ChangeEntityLocation(index, oldP, newP); err != nil {
		return err
	}
	rec.P = newP
	if newP.IsValid() {
		rec.Sim.Flags &^= FlagNonspatial
	} else {
		rec.Sim.Flags |= FlagNonspatial
	}
	return nil
}
