package arena

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Ref is a handle to one T stored in an arena. It encodes offset+1 so the
// zero Ref is nil.
type Ref[T any] uint32

func (r Ref[T]) IsNil() bool { return r == 0 }

// Span is a handle to n contiguous T stored in an arena.
type Span[T any] struct {
	off uint32 // offset+1, 0 = nil
	n   uint32
}

func (s Span[T]) IsNil() bool { return s.off == 0 }
func (s Span[T]) Len() int    { return int(s.n) }

// Push allocates zeroed storage for one T.
func Push[T any](a *Arena) (Ref[T], error) {
	var zero T
	if err := checkPointerFree(reflect.TypeOf(&zero).Elem()); err != nil {
		return 0, err
	}
	off, err := a.reserve(unsafe.Sizeof(zero), unsafe.Alignof(zero))
	if err != nil {
		return 0, err
	}
	return Ref[T](off + 1), nil
}

// PushSlice allocates zeroed storage for n contiguous T.
func PushSlice[T any](a *Arena, n int) (Span[T], error) {
	var zero T
	if err := checkPointerFree(reflect.TypeOf(&zero).Elem()); err != nil {
		return Span[T]{}, err
	}
	if n <= 0 {
		return Span[T]{}, nil
	}
	off, err := a.reserve(unsafe.Sizeof(zero)*uintptr(n), unsafe.Alignof(zero))
	if err != nil {
		return Span[T]{}, err
	}
	return Span[T]{off: uint32(off + 1), n: uint32(n)}, nil
}

// Get resolves r. The pointer stays valid until the arena is reset or the
// surrounding temporary scope ends.
func Get[T any](a *Arena, r Ref[T]) *T {
	if r == 0 {
		return nil
	}
	return (*T)(a.at(int(r) - 1))
}

// Slice resolves s into a slice aliasing arena memory.
func Slice[T any](a *Arena, s Span[T]) []T {
	if s.off == 0 || s.n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(a.at(int(s.off)-1)), int(s.n))
}

// pointerFree caches the per-type scan result. Shared by every arena.
var pointerFree sync.Map // reflect.Type -> bool

func checkPointerFree(t reflect.Type) error {
	if v, ok := pointerFree.Load(t); ok {
		if v.(bool) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrPointerType, t)
	}
	free := !hasPointers(t)
	pointerFree.Store(t, free)
	if !free {
		return fmt.Errorf("%w: %s", ErrPointerType, t)
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
