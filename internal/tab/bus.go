package tab

import "sync"

// Bus is a synchronous event bus local to one tab. Handlers run on the emitting goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[uint64]func()
	nextID   uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[uint64]func())}
}

// On registers fn for topic and returns a function that unregisters it
func (b *Bus) On(topic string, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[uint64]func())
	}
	b.handlers[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

// Emit calls every handler registered for topic
func (b *Bus) Emit(topic string) {
	b.mu.RLock()
	fns := make([]func(), 0, len(b.handlers[topic]))
	for _, fn := range b.handlers[topic] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
