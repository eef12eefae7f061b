package sensors

import (
	"sync"
	"time"

	"github.com/citypulse/dashboard/internal/model"
)

// Registry holds the sensors known to the dashboard. The set is
// seeded from the backend and kept in arrival order; live readings
// only touch a sensor's last-reading timestamp.
type Registry struct {
	sensors    map[int64]model.Sensor
	order      []int64
	byCategory map[string][]int64 // key: category, value: []sensor_id
	mu         sync.RWMutex
}

// NewRegistry creates an empty sensor registry
func NewRegistry() *Registry {
	return &Registry{
		sensors:    make(map[int64]model.Sensor),
		byCategory: make(map[string][]int64),
	}
}

// ReplaceAll swaps in a freshly fetched sensor list
func (r *Registry) ReplaceAll(sensors []model.Sensor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sensors = make(map[int64]model.Sensor, len(sensors))
	r.order = make([]int64, 0, len(sensors))
	r.byCategory = make(map[string][]int64)

	for _, s := range sensors {
		if _, dup := r.sensors[s.ID]; dup {
			continue
		}
		r.sensors[s.ID] = s
		r.order = append(r.order, s.ID)
		r.byCategory[s.Category] = append(r.byCategory[s.Category], s.ID)
	}
}

// All returns a copy of the sensors in their original order
func (r *Registry) All() []model.Sensor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Sensor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sensors[id])
	}
	return out
}

// Get retrieves a sensor by ID
func (r *Registry) Get(id int64) (model.Sensor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sensors[id]
	return s, ok
}

// ByCategory returns the sensors in one category
func (r *Registry) ByCategory(category string) []model.Sensor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byCategory[category]
	out := make([]model.Sensor, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.sensors[id])
	}
	return out
}

// Touch records that a reading arrived from a sensor. Readings from
// sensors the registry does not know are ignored.
func (r *Registry) Touch(id int64, at time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sensors[id]
	if !ok {
		return false
	}
	if at.After(s.LastReading) {
		s.LastReading = at
		r.sensors[id] = s
	}
	return true
}

// Count returns the total number of sensors
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sensors)
}

// CountActive returns how many sensors report status active
func (r *Registry) CountActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, s := range r.sensors {
		if s.IsActive() {
			count++
		}
	}
	return count
}

// Categories returns the number of sensors per category
func (r *Registry) Categories() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(r.byCategory))
	for category, ids := range r.byCategory {
		out[category] = len(ids)
	}
	return out
}
