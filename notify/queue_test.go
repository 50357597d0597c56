package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/pollualert/core/models"
)

func event(id string) models.AlertEvent {
	return models.AlertEvent{EventID: id, AQI: 180, Message: "Casablanca (Malsain)"}
}

func TestPushDeduplicates(t *testing.T) {
	q := NewQueue(16, time.Minute)

	if !q.Push(event("e1")) {
		t.Error("first push rejected")
	}
	if q.Push(event("e1")) {
		t.Error("duplicate push accepted")
	}
	if got := q.Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
}

func TestDuplicateAfterDrainStillRejected(t *testing.T) {
	q := NewQueue(16, time.Minute)
	q.Push(event("e1"))
	q.Drain()

	// Redelivery of a consumed event is still a no-op within the window.
	if q.Push(event("e1")) {
		t.Error("redelivered event accepted after drain")
	}
}

func TestDedupWindowIsBounded(t *testing.T) {
	q := NewQueue(3, time.Minute)
	for i := 0; i < 4; i++ {
		q.Push(event(fmt.Sprintf("e%d", i)))
	}
	// e0 has been evicted from the history ring, so it counts as new again.
	if !q.Push(event("e0")) {
		t.Error("event outside the history window rejected")
	}
	// e3 is still inside the window.
	if q.Push(event("e3")) {
		t.Error("event inside the history window accepted")
	}
}

func TestDrainOrderAndRestart(t *testing.T) {
	q := NewQueue(16, time.Minute)
	q.Push(event("e1"))
	q.Push(event("e2"))
	q.Push(event("e3"))

	got := q.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain len = %d, want 3", len(got))
	}
	for i, want := range []string{"e1", "e2", "e3"} {
		if got[i].EventID != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].EventID, want)
		}
	}

	if q.Drain() != nil {
		t.Error("second Drain replayed events")
	}
	q.Push(event("e4"))
	if got := q.Drain(); len(got) != 1 || got[0].EventID != "e4" {
		t.Errorf("Drain after restart = %v", got)
	}
}

func TestUnconsumedEntriesExpire(t *testing.T) {
	q := NewQueue(16, 10*time.Second)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }

	q.Push(event("e1"))
	now = now.Add(11 * time.Second)
	q.Push(event("e2"))

	got := q.Drain()
	if len(got) != 1 || got[0].EventID != "e2" {
		t.Errorf("Drain = %v, want only e2 (e1 expired undrained)", got)
	}
}
