package notify

import (
	"sync"
	"time"

	"github.com/pollualert/core/models"
)

// Queue is the client-side display queue sitting between the alert channel
// and the rendering layer. Push never blocks, so an alert burst cannot stall
// the channel's receive loop; the rendering layer drains at its own pace.
//
// Duplicate deliveries are detected against a bounded recent-history ring,
// and unconsumed entries expire after the display TTL.
type Queue struct {
	mu sync.Mutex

	pending []entry
	seen    map[string]struct{}
	ring    []string // eviction order for seen
	next    int

	historyLimit int
	displayTTL   time.Duration
	now          func() time.Time
}

type entry struct {
	event     models.AlertEvent
	expiresAt time.Time
}

// NewQueue creates a queue remembering the last historyLimit event ids and
// expiring undrained entries after displayTTL.
func NewQueue(historyLimit int, displayTTL time.Duration) *Queue {
	if historyLimit < 1 {
		historyLimit = 1
	}
	if displayTTL <= 0 {
		displayTTL = 15 * time.Second
	}
	return &Queue{
		seen:         make(map[string]struct{}, historyLimit),
		ring:         make([]string, historyLimit),
		historyLimit: historyLimit,
		displayTTL:   displayTTL,
		now:          time.Now,
	}
}

// Push enqueues the event unless its id was already seen recently.
// It reports whether the event was accepted.
func (q *Queue) Push(ev models.AlertEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked()

	if _, dup := q.seen[ev.EventID]; dup {
		return false
	}
	q.rememberLocked(ev.EventID)
	q.pending = append(q.pending, entry{
		event:     ev,
		expiresAt: q.now().Add(q.displayTTL),
	})
	return true
}

// Drain removes and returns all pending, unexpired events in arrival order.
// Calling it again yields whatever arrived since; it never replays.
func (q *Queue) Drain() []models.AlertEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked()
	if len(q.pending) == 0 {
		return nil
	}
	out := make([]models.AlertEvent, len(q.pending))
	for i, e := range q.pending {
		out[i] = e.event
	}
	q.pending = q.pending[:0]
	return out
}

// Len reports how many events are currently pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pruneLocked()
	return len(q.pending)
}

// pruneLocked drops entries whose display window has passed.
func (q *Queue) pruneLocked() {
	if len(q.pending) == 0 {
		return
	}
	now := q.now()
	kept := q.pending[:0]
	for _, e := range q.pending {
		if now.Before(e.expiresAt) {
			kept = append(kept, e)
		}
	}
	q.pending = kept
}

// rememberLocked records an id, evicting the oldest once the ring is full.
// The dedup window stays finite no matter how long the session runs.
func (q *Queue) rememberLocked(id string) {
	if old := q.ring[q.next]; old != "" {
		delete(q.seen, old)
	}
	q.ring[q.next] = id
	q.seen[id] = struct{}{}
	q.next = (q.next + 1) % q.historyLimit
}
