// Package status tracks the most recent automation step for observers such
// as the MCP status tool or CLI progress output. It is a last-value cache,
// not a queue: observers only ever see the newest event.
package status

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event describes the operation currently in progress.
type Event struct {
	Operation string    `yaml:"operation" json:"operation"`
	Detail    string    `yaml:"detail"    json:"detail"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}

// Reporter receives status updates from automation code.
type Reporter interface {
	Update(operation, detail string)
}

// Nop discards updates.
type Nop struct{}

func (Nop) Update(string, string) {}

// Tracker stores the latest Event and fans it out to subscribers.
type Tracker struct {
	mu     sync.Mutex
	latest Event
	set    bool
	subs   map[int]chan Event
	nextID int
	log    *zap.Logger
	now    func() time.Time
}

// NewTracker creates a Tracker. Updates are also logged at debug level.
func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		subs: make(map[int]chan Event),
		log:  log,
		now:  time.Now,
	}
}

// Update replaces the latest event.
func (t *Tracker) Update(operation, detail string) {
	t.mu.Lock()
	ev := Event{Operation: operation, Detail: detail, Timestamp: t.now()}
	t.latest = ev
	t.set = true
	for _, ch := range t.subs {
		// Drop a stale unread value so the channel always holds the newest.
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
	t.mu.Unlock()

	t.log.Debug("operation status", zap.String("operation", operation), zap.String("detail", detail))
}

// Latest returns the most recent event, if any.
func (t *Tracker) Latest() (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.set
}

// Subscribe returns a channel that always holds at most the newest event and
// a cancel func that closes it.
func (t *Tracker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = ch
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			close(ch)
		})
	}
}
