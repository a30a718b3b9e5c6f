package event

import "reflect"

type queued struct {
	typ reflect.Type
	ev  any
}

// Bus is a double-buffered event bus. Events emitted during frame N are
// delivered in frame N+1, in the order they were emitted, when the
// EventSystem swaps and dispatches. A Bus belongs to the frame goroutine.
type Bus struct {
	front    []queued
	back     []queued
	handlers map[reflect.Type][]any

	delivered uint64
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]any)}
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Emit queues ev for the next frame. Emitting on a nil bus is a no-op so
// code paths without a bus need no checks.
func Emit[T any](b *Bus, ev T) {
	if b == nil {
		return
	}
	b.back = append(b.back, queued{typ: typeOf[T](), ev: ev})
}

// Subscribe registers fn for events of type T. Handlers of one type run in
// subscription order.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers makes the events emitted since the last swap dispatchable and
// starts an empty back buffer. Both buffers keep their capacity.
func (b *Bus) SwapBuffers() {
	clear(b.front)
	b.front, b.back = b.back, b.front[:0]
}

// Pending returns the number of events waiting for the next swap.
func (b *Bus) Pending() int { return len(b.back) }

// Delivered returns the total number of handler calls made so far.
func (b *Bus) Delivered() uint64 { return b.delivered }

// DispatchAll delivers the front buffer and returns how many events it held.
// Events emitted by handlers land in the back buffer.
func (b *Bus) DispatchAll() int {
	for _, q := range b.front {
		for _, h := range b.handlers[q.typ] {
			reflect.ValueOf(h).Call([]reflect.Value{reflect.ValueOf(q.ev)})
			b.delivered++
		}
	}
	return len(b.front)
}
