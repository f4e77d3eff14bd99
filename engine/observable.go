package engine

import "sync"

// Observer is a registration returned by Observable.Add.
type Observer[T any] struct {
	o  *Observable[T]
	fn func(T)
}

// Remove unregisters the observer. Calling it twice is a no-op.
func (ob *Observer[T]) Remove() {
	if ob == nil || ob.o == nil {
		return
	}
	ob.o.remove(ob)
	ob.o = nil
}

// Observable is a list of callbacks notified in registration order.
type Observable[T any] struct {
	mu        sync.Mutex
	observers []*Observer[T]
}

// Add registers fn and returns its registration.
func (o *Observable[T]) Add(fn func(T)) *Observer[T] {
	ob := &Observer[T]{o: o, fn: fn}
	o.mu.Lock()
	o.observers = append(o.observers, ob)
	o.mu.Unlock()
	return ob
}

// AddOnce registers fn for a single notification.
func (o *Observable[T]) AddOnce(fn func(T)) *Observer[T] {
	var ob *Observer[T]
	ob = o.Add(func(v T) {
		ob.Remove()
		fn(v)
	})
	return ob
}

// Notify calls every registered observer with v.
func (o *Observable[T]) Notify(v T) {
	o.mu.Lock()
	obs := append([]*Observer[T](nil), o.observers...)
	o.mu.Unlock()
	for _, ob := range obs {
		ob.fn(v)
	}
}

// Len returns the number of registered observers.
func (o *Observable[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.observers)
}

// Clear removes all observers.
func (o *Observable[T]) Clear() {
	o.mu.Lock()
	for _, ob := range o.observers {
		ob.o = nil
	}
	o.observers = nil
	o.mu.Unlock()
}

func (o *Observable[T]) remove(ob *Observer[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, cur := range o.observers {
		if cur == ob {
			o.observers = append(o.observers[:i], o.observers[i+1:]...)
			return
		}
	}
}
