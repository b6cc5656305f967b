package events

import (
	"slices"
	"sync"
	"time"
)

type subscription struct {
	id      uint64
	kinds   map[Kind]struct{}
	handler Handler
}

func (s subscription) wants(k Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

// Bus is a synchronous in-process event dispatcher. It is safe for
// concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	closed bool

	now func() time.Time
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{now: time.Now}
}

// Subscribe registers handler for the given kinds, or for every kind when
// none is given. The returned function removes the subscription and is safe
// to call more than once.
func (b *Bus) Subscribe(handler Handler, kinds ...Kind) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || handler == nil {
		return func() {}
	}

	b.nextID++
	sub := subscription{id: b.nextID, handler: handler}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = struct{}{}
		}
	}
	b.subs = append(b.subs, sub)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == id })
}

// Publish delivers e to every matching subscriber in subscription order.
// A zero e.At is stamped with the current time. Publishing on a closed bus
// is a no-op.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.wants(e.Kind) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	if e.At.IsZero() {
		e.At = b.now()
	}
	for _, h := range targets {
		h(e)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops every subscription. Later Subscribe and Publish calls do
// nothing.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subs = nil
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard is a [Publisher] that drops every event.
var Discard Publisher = discard{}
