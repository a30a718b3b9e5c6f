// Package arena implements a fixed-capacity bump allocator over a byte range
// supplied by the host. Individual records are never freed; the whole range
// lives as long as its owner.
//
// Records are addressed by offset handles (Ref, Span) instead of pointers, so
// intrusive links stored inside the arena stay valid regardless of which
// caller currently holds the owner. Types placed in an arena must be
// pointer-free: the backing memory is a []byte the garbage collector never
// scans.
//
// An Arena is not safe for concurrent use.
package arena

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// MaxCapacity is the largest range an arena can address: handles store
// offset+1 in a uint32.
const MaxCapacity = math.MaxUint32 - 1

var (
	ErrExhausted           = errors.New("arena capacity exceeded")
	ErrPointerType         = errors.New("type holds pointers")
	ErrUnbalancedTemporary = errors.New("unbalanced temporary memory")
	ErrTooLarge            = errors.New("arena range exceeds handle capacity")
)

// Arena is a bump allocator over a fixed byte range.
type Arena struct {
	name      string
	base      []byte
	used      int
	allocs    int
	tempCount int
}

// New wraps base as an arena. The range is zero-filled here so that callers
// do not depend on the host having cleared it. Ranges larger than
// MaxCapacity panic; hosts check sizes with CheckCapacity first.
func New(name string, base []byte) *Arena {
	if err := CheckCapacity(len(base)); err != nil {
		panic(fmt.Sprintf("arena %s: %v", name, err))
	}
	clear(base)
	return &Arena{name: name, base: base}
}

// NewSized allocates a fresh zeroed range of size bytes.
func NewSized(name string, size int) *Arena {
	if size < 0 {
		size = 0
	}
	if err := CheckCapacity(size); err != nil {
		panic(fmt.Sprintf("arena %s: %v", name, err))
	}
	return &Arena{name: name, base: make([]byte, size)}
}

// CheckCapacity reports whether size bytes can back an arena.
func CheckCapacity(size int) error {
	if uint64(size) > MaxCapacity {
		return fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, size, uint64(MaxCapacity))
	}
	return nil
}

func (a *Arena) Name() string  { return a.name }
func (a *Arena) Used() int     { return a.used }
func (a *Arena) Capacity() int { return len(a.base) }

// Remaining returns the bytes left before the arena is exhausted, ignoring
// any alignment padding the next allocation may need.
func (a *Arena) Remaining() int { return len(a.base) - a.used }

// Reset discards every allocation. Outstanding handles become dangling.
func (a *Arena) Reset() {
	a.used = 0
	a.allocs = 0
	a.tempCount = 0
}

// reserve carves size bytes aligned to align and returns their offset.
// The carved bytes are zeroed: a rewound temporary leaves stale data behind.
func (a *Arena) reserve(size, align uintptr) (int, error) {
	start := a.alignedOffset(align)
	end := start + int(size)
	if end > len(a.base) {
		return 0, fmt.Errorf("%w: %s needs %d bytes at offset %d, capacity %d",
			ErrExhausted, a.name, size, start, len(a.base))
	}
	clear(a.base[start:end])
	a.used = end
	a.allocs++
	return start, nil
}

// alignedOffset rounds used up so that the absolute address is a multiple of
// align. The host range itself may start at any address.
func (a *Arena) alignedOffset(align uintptr) int {
	if align <= 1 {
		return a.used
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(a.base))) + uintptr(a.used)
	mask := align - 1
	pad := (align - addr&mask) & mask
	return a.used + int(pad)
}

func (a *Arena) at(off int) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.base)), off)
}
