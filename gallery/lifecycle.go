package gallery

import (
	"sort"
	"sync"
)

// LifecycleHandler receives node lifecycle events from the host.
type LifecycleHandler interface {
	NodeRemoved(id NodeID)
	FieldChanged(id NodeID, field string)
}

// Lifecycle is the subscriber list a host notifies about node events.
type Lifecycle struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]LifecycleHandler
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{handlers: make(map[int]LifecycleHandler)}
}

// Subscribe adds h and returns a func that removes it again.
func (l *Lifecycle) Subscribe(h LifecycleHandler) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.handlers[id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.handlers, id)
		})
	}
}

func (l *Lifecycle) NodeRemoved(id NodeID) {
	for _, h := range l.snapshot() {
		h.NodeRemoved(id)
	}
}

func (l *Lifecycle) FieldChanged(id NodeID, field string) {
	for _, h := range l.snapshot() {
		h.FieldChanged(id, field)
	}
}

// snapshot lets handlers unsubscribe while being notified.
func (l *Lifecycle) snapshot() []LifecycleHandler {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int, 0, len(l.handlers))
	for id := range l.handlers {
		ids = append(ids, id)
	}
	// Subscription order.
	sort.Ints(ids)

	hs := make([]LifecycleHandler, len(ids))
	for i, id := range ids {
		hs[i] = l.handlers[id]
	}
	return hs
}
