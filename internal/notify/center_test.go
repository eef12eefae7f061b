package notify

import (
	"testing"
	"time"

	"github.com/citypulse/dashboard/internal/model"
	"github.com/citypulse/dashboard/internal/timer"
)

func newTestCenter(t *testing.T, ttl time.Duration) *Center {
	t.Helper()
	s := timer.NewScheduler()
	s.Start()
	t.Cleanup(s.Stop)
	return NewCenter(s, ttl, 5)
}

func TestCenter_PushNewestFirst(t *testing.T) {
	c := newTestCenter(t, time.Minute)

	c.Push("first", "m1", model.SeverityLow)
	c.Push("second", "m2", model.SeverityHigh)

	active := c.Active()
	if len(active) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(active))
	}
	if active[0].Title != "second" || active[1].Title != "first" {
		t.Errorf("Notifications out of order: %s, %s", active[0].Title, active[1].Title)
	}
}

func TestCenter_CapDropsOldest(t *testing.T) {
	c := newTestCenter(t, time.Minute)

	for i := 0; i < 6; i++ {
		c.Push(string(rune('a'+i)), "m", model.SeverityMedium)
	}

	active := c.Active()
	if len(active) != 5 {
		t.Fatalf("Expected 5 notifications after 6 pushes, got %d", len(active))
	}
	if active[0].Title != "f" {
		t.Errorf("Expected newest notification first, got %s", active[0].Title)
	}
	for _, n := range active {
		if n.Title == "a" {
			t.Error("Oldest notification should have been dropped")
		}
	}
}

func TestCenter_ExpiresAfterTTL(t *testing.T) {
	c := newTestCenter(t, 50*time.Millisecond)

	c.Push("transient", "m", model.SeverityLow)
	if c.Count() != 1 {
		t.Fatal("Expected notification to be visible immediately")
	}

	time.Sleep(150 * time.Millisecond)

	if got := c.Count(); got != 0 {
		t.Errorf("Expected notification to expire, still have %d", got)
	}
}

func TestCenter_DismissCancelsExpiry(t *testing.T) {
	c := newTestCenter(t, 50*time.Millisecond)

	n := c.Push("transient", "m", model.SeverityLow)
	c.Dismiss(n.ID)

	if got := c.Count(); got != 0 {
		t.Fatalf("Expected dismissal to remove the notification, have %d", got)
	}

	// The expiry task must not fire against the now-empty set
	time.Sleep(120 * time.Millisecond)

	if got := c.Count(); got != 0 {
		t.Errorf("Expected no notifications after TTL, have %d", got)
	}
}

func TestCenter_DismissUnknownIDIsNoop(t *testing.T) {
	c := newTestCenter(t, time.Minute)

	c.Push("keep", "m", model.SeverityLow)
	c.Dismiss("not-a-real-id")

	if got := c.Count(); got != 1 {
		t.Errorf("Expected dismissing an unknown ID to change nothing, have %d", got)
	}
}

func TestCenter_DismissIsIdempotent(t *testing.T) {
	c := newTestCenter(t, time.Minute)

	n := c.Push("once", "m", model.SeverityLow)
	c.Dismiss(n.ID)
	c.Dismiss(n.ID)

	if got := c.Count(); got != 0 {
		t.Errorf("Expected 0 notifications, have %d", got)
	}
}

func TestCenter_EachExpiresIndependently(t *testing.T) {
	c := newTestCenter(t, 80*time.Millisecond)

	c.Push("first", "m", model.SeverityLow)
	time.Sleep(40 * time.Millisecond)
	c.Push("second", "m", model.SeverityLow)

	// First should expire while second is still visible
	time.Sleep(60 * time.Millisecond)
	active := c.Active()
	if len(active) != 1 || active[0].Title != "second" {
		t.Fatalf("Expected only the second notification, got %v", active)
	}

	time.Sleep(80 * time.Millisecond)
	if got := c.Count(); got != 0 {
		t.Errorf("Expected all notifications to expire, have %d", got)
	}
}
