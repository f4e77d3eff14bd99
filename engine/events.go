package engine

import "sync"

// EventType names a window or surface event.
type EventType uint8

const (
	EventKeyDown EventType = iota + 1
	EventKeyUp
	EventPointerDown
	EventPointerUp
	EventPointerMove
	EventResize
)

func (t EventType) String() string {
	switch t {
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventPointerDown:
		return "pointerdown"
	case EventPointerUp:
		return "pointerup"
	case EventPointerMove:
		return "pointermove"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Event is delivered to window listeners.
//
// Key holds the printable key ("i", "w") or a name for special keys
// ("ArrowUp", "Escape"). X and Y are surface pixel coordinates for pointer
// events; Width and Height are the surface size for resize events.
type Event struct {
	Type EventType

	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool

	X, Y   int
	Button int

	Width, Height int
}

// Listener is a registration returned by EventTarget.AddEventListener.
type Listener struct {
	t   *EventTarget
	typ EventType
	fn  func(Event)
}

// Remove unregisters l. Calling it more than once is a no-op.
func (l *Listener) Remove() {
	if l == nil || l.t == nil {
		return
	}
	l.t.remove(l)
	l.t = nil
}

// EventTarget dispatches events to listeners registered per type.
type EventTarget struct {
	mu        sync.Mutex
	listeners map[EventType][]*Listener
}

// AddEventListener registers fn for events of type typ.
func (t *EventTarget) AddEventListener(typ EventType, fn func(Event)) *Listener {
	l := &Listener{t: t, typ: typ, fn: fn}
	t.mu.Lock()
	if t.listeners == nil {
		t.listeners = make(map[EventType][]*Listener)
	}
	t.listeners[typ] = append(t.listeners[typ], l)
	t.mu.Unlock()
	return l
}

// Dispatch calls the listeners for e.Type and returns how many were called.
func (t *EventTarget) Dispatch(e Event) int {
	t.mu.Lock()
	ls := append([]*Listener(nil), t.listeners[e.Type]...)
	t.mu.Unlock()
	for _, l := range ls {
		l.fn(e)
	}
	return len(ls)
}

// ListenerCount returns the number of listeners for typ.
func (t *EventTarget) ListenerCount(typ EventType) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners[typ])
}

func (t *EventTarget) remove(l *Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ls := t.listeners[l.typ]
	for i, cur := range ls {
		if cur == l {
			t.listeners[l.typ] = append(ls[:i], ls[i+1:]...)
			return
		}
	}
}
