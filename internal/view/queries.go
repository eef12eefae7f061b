package view

import (
	"fmt"
	"time"

	"github.com/citypulse/dashboard/internal/model"
)

// Filter narrows an alert list per axis. An empty axis places no
// restriction; non-empty axes must all match.
type Filter struct {
	Severities map[model.Severity]bool
	Categories map[string]bool
	Statuses   map[model.AlertStatus]bool
}

// Match reports whether an alert passes every non-empty axis
func (f Filter) Match(a model.Alert) bool {
	if len(f.Severities) > 0 && !f.Severities[a.Severity] {
		return false
	}
	if len(f.Categories) > 0 && !f.Categories[a.Category] {
		return false
	}
	if len(f.Statuses) > 0 && !f.Statuses[a.Status] {
		return false
	}
	return true
}

// FilteredAlerts returns the alerts passing the filter, in their
// original order
func FilteredAlerts(alerts []model.Alert, f Filter) []model.Alert {
	out := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// SensorHealthRatio formats the share of active sensors as a percent
// string with one decimal place. Zero sensors reads as "0%".
func SensorHealthRatio(sensors []model.Sensor) string {
	if len(sensors) == 0 {
		return "0%"
	}
	active := 0
	for _, s := range sensors {
		if s.IsActive() {
			active++
		}
	}
	return fmt.Sprintf("%.1f%%", float64(active)/float64(len(sensors))*100)
}

// ActiveAlertCount counts alerts still in the active state
func ActiveAlertCount(alerts []model.Alert) int {
	count := 0
	for _, a := range alerts {
		if a.Status == model.StatusActive {
			count++
		}
	}
	return count
}

// CriticalAlertCount counts alerts of critical severity
func CriticalAlertCount(alerts []model.Alert) int {
	count := 0
	for _, a := range alerts {
		if a.Severity == model.SeverityCritical {
			count++
		}
	}
	return count
}

// ResolvedTodayCount counts alerts resolved on the same calendar day
// as now, regardless of the time of day
func ResolvedTodayCount(alerts []model.Alert, now time.Time) int {
	count := 0
	y, m, d := now.Date()
	for _, a := range alerts {
		if a.Status != model.StatusResolved || a.ResolvedAt == nil {
			continue
		}
		ry, rm, rd := a.ResolvedAt.Date()
		if ry == y && rm == m && rd == d {
			count++
		}
	}
	return count
}

// Stats is the overview card summarizing the whole network
type Stats struct {
	TotalSensors   int       `json:"total_sensors"`
	ActiveSensors  int       `json:"active_sensors"`
	TotalAlerts    int       `json:"total_alerts"`
	ActiveAlerts   int       `json:"active_alerts"`
	CriticalAlerts int       `json:"critical_alerts"`
	ResolvedToday  int       `json:"resolved_today"`
	SystemHealth   string    `json:"system_health"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Overview derives the overview card from the current stores
func Overview(sensors []model.Sensor, alerts []model.Alert, now time.Time) Stats {
	active := 0
	for _, s := range sensors {
		if s.IsActive() {
			active++
		}
	}
	return Stats{
		TotalSensors:   len(sensors),
		ActiveSensors:  active,
		TotalAlerts:    len(alerts),
		ActiveAlerts:   ActiveAlertCount(alerts),
		CriticalAlerts: CriticalAlertCount(alerts),
		ResolvedToday:  ResolvedTodayCount(alerts, now),
		SystemHealth:   SensorHealthRatio(sensors),
		LastUpdated:    now,
	}
}
