package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tilequest/worldsim/internal/core/arena"
)

// ChangeEntityLocation moves the chunk membership of the entity at storage
// index from oldP (nil when the entity was not in any chunk) to newP.
//
// A move inside one chunk touches nothing. A null newP only removes the
// entity. If oldP's chunk does not list the entity the world is left
// unchanged and ErrEntityNotInChunk is returned.
func (w *World) ChangeEntityLocation(index uint32, oldP *Position, newP Position) error {
	if oldP != nil && !oldP.IsValid() {
		oldP = nil
	}
	if oldP != nil && newP.IsValid() && AreInSameChunk(*oldP, newP) {
		return nil
	}

	var (
		oldChunk *Chunk
		oldBlock *EntityBlock
		oldSlot  int
	)
	if oldP != nil {
		var ok bool
		oldChunk, oldBlock, oldSlot, ok = w.find(index, *oldP)
		if !ok {
			return fmt.Errorf("%w: entity %d, chunk (%d, %d, %d)",
				ErrEntityNotInChunk, index, oldP.ChunkX, oldP.ChunkY, oldP.ChunkZ)
		}
	}

	// Insert first: a failed insert (arena exhausted) then leaves the old
	// membership intact. Insertion never touches the old chunk's blocks.
	if newP.IsValid() {
		if err := w.insert(index, newP); err != nil {
			return err
		}
	}
	if oldChunk != nil {
		w.removeAt(oldChunk, oldBlock, oldSlot)
	}
	return nil
}

// find locates the block and slot holding index in p's chunk.
func (w *World) find(index uint32, p Position) (*Chunk, *EntityBlock, int, bool) {
	ref, ok := w.GetChunk(p.ChunkX, p.ChunkY, p.ChunkZ)
	if !ok {
		return nil, nil, 0, false
	}
	c := w.Chunk(ref)
	for b := &c.FirstBlock; b != nil; b = arena.Get(w.arena, b.Next) {
		for i := uint32(0); i < b.Count; i++ {
			if b.Entries[i] == index {
				return c, b, int(i), true
			}
		}
	}
	return nil, nil, 0, false
}

// removeAt fills the slot with the last entry of the head block. When the
// head empties and has a successor, the successor moves inline and its old
// storage goes to the free list.
func (w *World) removeAt(c *Chunk, b *EntityBlock, slot int) {
	first := &c.FirstBlock
	first.Count--
	b.Entries[slot] = first.Entries[first.Count]

	if first.Count == 0 && !first.Next.IsNil() {
		nextRef := first.Next
		next := arena.Get(w.arena, nextRef)
		*first = *next

		*next = EntityBlock{Next: w.firstFree}
		w.firstFree = nextRef
		w.stats.BlocksFreed++
		w.log.Debug("entity block freed",
			zap.Int32("x", c.X), zap.Int32("y", c.Y), zap.Int32("z", c.Z))
	}
}

// insert appends index to the head block of p's chunk, moving a full head's
// contents into a fresh block first.
func (w *World) insert(index uint32, p Position) error {
	ref, err := w.GetOrCreateChunk(p.ChunkX, p.ChunkY, p.ChunkZ)
	if err != nil {
		return err
	}
	head := &w.Chunk(ref).FirstBlock
	if head.Count == EntityBlockCapacity {
		blockRef, err := w.newBlock()
		if err != nil {
			return fmt.Errorf("grow chunk (%d, %d, %d): %w", p.ChunkX, p.ChunkY, p.ChunkZ, err)
		}
		*arena.Get(w.arena, blockRef) = *head
		head.Next = blockRef
		head.Count = 0
	}
	head.Entries[head.Count] = index
	head.Count++
	return nil
}

func (w *World) newBlock() (arena.Ref[EntityBlock], error) {
	if ref := w.firstFree; !ref.IsNil() {
		w.firstFree = arena.Get(w.arena, ref).Next
		w.stats.BlocksReused++
		return ref, nil
	}
	ref, err := arena.Push[EntityBlock](w.arena)
	if err != nil {
		return 0, err
	}
	w.stats.BlocksAllocated++
	return ref, nil
}

// FreeBlocks returns the length of the free list.
func (w *World) FreeBlocks() int {
	n := 0
	for ref := w.firstFree; !ref.IsNil(); ref = arena.Get(w.arena, ref).Next {
		n++
	}
	return n
}

// ChunkEntities visits the storage indices recorded in a chunk, head block
// first. Returning false from fn stops the walk.
func (w *World) ChunkEntities(ref ChunkRef, fn func(index uint32) bool) {
	c := w.Chunk(ref)
	if c == nil {
		return
	}
	for b := &c.FirstBlock; b != nil; b = arena.Get(w.arena, b.Next) {
		for i := uint32(0); i < b.Count; i++ {
			if !fn(b.Entries[i]) {
				return
			}
		}
	}
}

// EntityCount returns the number of entities recorded in a chunk.
func (w *World) EntityCount(ref ChunkRef) int {
	n := 0
	w.ChunkEntities(ref, func(uint32) bool {
		n++
		return true
	})
	return n
}
