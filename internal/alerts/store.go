package alerts

import (
	"sort"
	"sync"
	"time"

	"github.com/citypulse/dashboard/internal/model"
)

// CanAcknowledge reports whether an alert may move to acknowledged.
// Only active alerts can be acknowledged.
func CanAcknowledge(a model.Alert) bool {
	return a.Status == model.StatusActive
}

// CanResolve reports whether an alert may move to resolved. Resolved
// is terminal, everything else may resolve.
func CanResolve(a model.Alert) bool {
	return a.Status == model.StatusActive || a.Status == model.StatusAcknowledged
}

// Store holds the alerts known to the dashboard, newest first.
// Alerts are deduplicated by their backend alert ID.
type Store struct {
	alerts []model.Alert
	seen   map[string]struct{} // key: alert_id
	mu     sync.RWMutex
}

// NewStore creates an empty alert store
func NewStore() *Store {
	return &Store{
		seen: make(map[string]struct{}),
	}
}

// Record adds a newly raised alert to the front of the list. It
// reports whether the alert was added; a replayed alert ID is
// dropped so one backend alert never shows up twice.
func (s *Store) Record(a model.Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[a.AlertID]; dup {
		return false
	}

	s.alerts = append([]model.Alert{a}, s.alerts...)
	s.seen[a.AlertID] = struct{}{}
	return true
}

// ReplaceAll swaps in a freshly fetched alert list, newest first
func (s *Store) ReplaceAll(alerts []model.Alert) {
	sorted := make([]model.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = sorted
	s.seen = make(map[string]struct{}, len(sorted))
	for _, a := range sorted {
		s.seen[a.AlertID] = struct{}{}
	}
}

// All returns a copy of the alerts, newest first
func (s *Store) All() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Get retrieves an alert by its backend alert ID
func (s *Store) Get(alertID string) (model.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.AlertID == alertID {
			return a, true
		}
	}
	return model.Alert{}, false
}

// Len returns the number of alerts held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// MarkAcknowledged moves an alert from active to acknowledged and
// returns the updated alert
func (s *Store) MarkAcknowledged(alertID string, at time.Time) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.find(alertID)
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	if !CanAcknowledge(s.alerts[i]) {
		return model.Alert{}, ErrIllegalTransition
	}

	s.alerts[i].Status = model.StatusAcknowledged
	s.alerts[i].AcknowledgedAt = &at
	return s.alerts[i], nil
}

// MarkResolved moves an alert to resolved, recording when and why.
// Resolved alerts never change again.
func (s *Store) MarkResolved(alertID, resolution string, at time.Time) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.find(alertID)
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	if !CanResolve(s.alerts[i]) {
		return model.Alert{}, ErrIllegalTransition
	}

	s.alerts[i].Status = model.StatusResolved
	s.alerts[i].ResolvedAt = &at
	s.alerts[i].Resolution = resolution
	return s.alerts[i], nil
}

// find returns the index of an alert, caller must hold the lock
func (s *Store) find(alertID string) (int, bool) {
	for i, a := range s.alerts {
		if a.AlertID == alertID {
			return i, true
		}
	}
	return 0, false
}

var (
	ErrNotFound          = &StoreError{"alert not found"}
	ErrIllegalTransition = &StoreError{"illegal status transition"}
)

// StoreError represents an alert store error
type StoreError struct {
	msg string
}

func (e *StoreError) Error() string {
	return e.msg
}
