package workspace

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType says which part of the workspace changed
type EventType string

const (
	EventTree    EventType = "tree"
	EventTabs    EventType = "tabs"
	EventDrag    EventType = "drag"
	EventRestore EventType = "restore"
)

// Event is published after every applied mutation
type Event struct {
	Seq  uint64    `json:"seq"`
	Type EventType `json:"type"`
	Op   string    `json:"op"`
	IDs  []string  `json:"ids,omitempty"`
	At   time.Time `json:"at"`
}

// DefaultSubscriberBuffer is the channel size used when Subscribe gets a
// non-positive buffer.
const DefaultSubscriberBuffer = 64

// bus fans events out to subscribers. A subscriber that falls behind loses
// events instead of stalling the writer.
type bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	next   uint64
	seq    uint64
	closed bool
	logger *zap.Logger
}

func newBus(logger *zap.Logger) *bus {
	return &bus{subs: make(map[uint64]chan Event), logger: logger}
}

func (b *bus) subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

func (b *bus) publish(e Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return e
	}
	b.seq++
	e.Seq = b.seq
	for id, ch := range b.subs {
		// Non-blocking send - drop events if the subscriber is full
		select {
		case ch <- e:
		default:
			b.logger.Warn("Subscriber channel full, dropping event",
				zap.Uint64("subscriber", id),
				zap.Uint64("seq", e.Seq),
				zap.String("op", e.Op))
		}
	}
	return e
}

func (b *bus) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *bus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
