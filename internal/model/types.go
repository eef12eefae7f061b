package model

import "time"

// Severity represents how serious an alert is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertStatus represents the lifecycle state of an alert
type AlertStatus string

const (
	StatusActive       AlertStatus = "active"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusResolved     AlertStatus = "resolved"
)

// Sensor status values as reported by the monitoring backend
const (
	SensorActive      = "active"
	SensorInactive    = "inactive"
	SensorMaintenance = "maintenance"
)

// SensorReading is a single measurement reported by a sensor
type SensorReading struct {
	SensorID   int64     `json:"sensor_id"`
	SensorName string    `json:"sensor_name,omitempty"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sensor describes one device in the city sensor network
type Sensor struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Unit            string    `json:"unit,omitempty"`
	Status          string    `json:"status"`
	LocationLat     *float64  `json:"location_lat,omitempty"`
	LocationLng     *float64  `json:"location_lng,omitempty"`
	LocationAddress string    `json:"location_address,omitempty"`
	BatteryLevel    *float64  `json:"battery_level,omitempty"`
	SignalStrength  *float64  `json:"signal_strength,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastReading     time.Time `json:"last_reading,omitempty"`
}

// IsActive reports whether the sensor is currently reporting
func (s Sensor) IsActive() bool {
	return s.Status == SensorActive
}

// Alert is one alert raised by the monitoring backend
type Alert struct {
	ID             int64       `json:"id"`
	AlertID        string      `json:"alert_id"`
	SensorID       int64       `json:"sensor_id"`
	SensorName     string      `json:"sensor_name,omitempty"`
	MetricType     string      `json:"metric_type"`
	Severity       Severity    `json:"severity"`
	Status         AlertStatus `json:"status"`
	Title          string      `json:"title"`
	Message        string      `json:"message"`
	Category       string      `json:"category,omitempty"`
	TriggerValue   *float64    `json:"trigger_value,omitempty"`
	ThresholdValue *float64    `json:"threshold_value,omitempty"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`
	Resolution     string      `json:"resolution,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Notification is a transient toast shown for a newly arrived alert
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// User identifies the operator the backend authenticated. The
// dashboard only displays it; the login flow lives in the backend.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
