package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/citypulse/dashboard/internal/model"
	"github.com/citypulse/dashboard/internal/timer"
)

const (
	// DefaultTTL is how long a notification stays visible
	DefaultTTL = 5 * time.Second
	// DefaultMax bounds how many notifications are visible at once
	DefaultMax = 5
)

// Center holds the transient notifications currently on screen.
// New notifications go to the front; the set is truncated to max and
// every entry auto-expires after the TTL unless dismissed first.
type Center struct {
	items     []model.Notification
	mu        sync.RWMutex
	scheduler *timer.Scheduler
	ttl       time.Duration
	max       int
}

// NewCenter creates a notification center backed by the given
// scheduler. The scheduler must already be started.
func NewCenter(scheduler *timer.Scheduler, ttl time.Duration, max int) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if max <= 0 {
		max = DefaultMax
	}
	return &Center{
		scheduler: scheduler,
		ttl:       ttl,
		max:       max,
	}
}

// Push adds a notification to the front of the set and schedules its
// expiry. Notifications pushed past the cap drop off the back.
func (c *Center) Push(title, message string, severity model.Severity) model.Notification {
	n := model.Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
	}

	c.mu.Lock()
	c.items = append([]model.Notification{n}, c.items...)
	var evicted []model.Notification
	if len(c.items) > c.max {
		evicted = c.items[c.max:]
		c.items = c.items[:c.max]
	}
	c.mu.Unlock()

	for _, old := range evicted {
		c.scheduler.Cancel(taskID(old.ID))
	}

	// Expiry races with manual dismissal; whichever runs first wins
	// and the loser finds nothing to remove.
	_ = c.scheduler.Schedule(taskID(n.ID), n.Timestamp.Add(c.ttl), func() {
		c.remove(n.ID)
	})

	return n
}

// Dismiss removes a notification and cancels its pending expiry.
// Dismissing an unknown ID does nothing.
func (c *Center) Dismiss(id string) {
	c.scheduler.Cancel(taskID(id))
	c.remove(id)
}

// Active returns the visible notifications, newest first
func (c *Center) Active() []model.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of visible notifications
func (c *Center) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Center) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func taskID(id string) string {
	return fmt.Sprintf("notification-%s", id)
}
