package events

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Publisher is what a book needs from the bus.
type Publisher interface {
	Publish(e Event)
}

// Bus is a lightweight fan-out using channels and callbacks. Publish never
// blocks: a full channel drops the event and a panicking callback is logged.
type Bus struct {
	mu      sync.RWMutex
	chans   []chan Event
	funcs   map[int]func(Event)
	nextID  int
	dropped atomic.Uint64
	log     *zap.Logger
}

// NewBus creates an event bus. A nil logger discards.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{funcs: make(map[int]func(Event)), log: log}
}

// Subscribe registers a buffered channel listener and returns it with an unsubscribe function.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	b.chans = append(b.chans, ch)

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, c := range b.chans {
				if c == ch {
					close(c)
					b.chans = append(b.chans[:i], b.chans[i+1:]...)
					break
				}
			}
		})
	}
	return ch, unsub
}

// SubscribeFunc registers a callback run inline on Publish.
func (b *Bus) SubscribeFunc(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.funcs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.funcs, id)
	}
}

// Publish sends to channels under the read lock, then runs callbacks from a
// snapshot taken under it, so a callback may subscribe or unsubscribe.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	for _, ch := range b.chans {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
			b.log.Warn("event dropped, subscriber is slow", zap.String("type", string(e.Type)), zap.String("id", e.ID))
		}
	}
	funcs := make([]func(Event), 0, len(b.funcs))
	for _, fn := range b.funcs {
		funcs = append(funcs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range funcs {
		b.call(fn, e)
	}
}

func (b *Bus) call(fn func(Event), e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked", zap.String("type", string(e.Type)), zap.Any("panic", r))
		}
	}()
	fn(e)
}

// Dropped counts events discarded because a channel was full.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

// Subscribers counts channel and callback listeners.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chans) + len(b.funcs)
}
