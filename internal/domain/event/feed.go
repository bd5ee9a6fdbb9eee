// Package event provides a small typed observer list. Handlers run synchronously, in
// registration order, on the goroutine that emits.
package event

import "sync"

// Feed fans events of type E out to subscribed handlers.
type Feed[E any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []subscription[E]
}

type subscription[E any] struct {
	id uint64
	fn func(E)
}

// Subscribe registers fn and returns a function that removes it.
func (f *Feed[E]) Subscribe(fn func(E)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.handlers = append(f.handlers, subscription[E]{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { f.remove(id) })
	}
}

func (f *Feed[E]) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, h := range f.handlers {
		if h.id == id {
			// Copy so an in-flight Emit keeps iterating its own snapshot.
			next := make([]subscription[E], 0, len(f.handlers)-1)
			next = append(next, f.handlers[:i]...)
			next = append(next, f.handlers[i+1:]...)
			f.handlers = next
			return
		}
	}
}

// Emit delivers e to every handler registered at the time of the call.
func (f *Feed[E]) Emit(e E) {
	f.mu.Lock()
	handlers := f.handlers
	f.mu.Unlock()

	for _, h := range handlers {
		h.fn(e)
	}
}

// Len returns the number of subscribers.
func (f *Feed[E]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}
