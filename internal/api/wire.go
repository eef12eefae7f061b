package api

import (
	"fmt"
	"time"

	"github.com/citypulse/dashboard/internal/model"
)

// apiTime decodes the backend's timestamps, which arrive either as
// RFC3339 or as a naive ISO string taken to be UTC
type apiTime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

type sensorTypeOut struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

type sensorOut struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	SensorType      sensorTypeOut `json:"sensor_type"`
	LocationLat     *float64      `json:"location_lat"`
	LocationLng     *float64      `json:"location_lng"`
	LocationAddress *string       `json:"location_address"`
	Status          string        `json:"status"`
	BatteryLevel    *float64      `json:"battery_level"`
	SignalStrength  *float64      `json:"signal_strength"`
	CreatedAt       apiTime       `json:"created_at"`
}

func (s sensorOut) toModel() model.Sensor {
	address := ""
	if s.LocationAddress != nil {
		address = *s.LocationAddress
	}
	return model.Sensor{
		ID:              s.ID,
		Name:            s.Name,
		Category:        s.SensorType.Category,
		Unit:            s.SensorType.Unit,
		Status:          s.Status,
		LocationLat:     s.LocationLat,
		LocationLng:     s.LocationLng,
		LocationAddress: address,
		BatteryLevel:    s.BatteryLevel,
		SignalStrength:  s.SignalStrength,
		CreatedAt:       s.CreatedAt.Time,
	}
}

type alertOut struct {
	ID             int64          `json:"id"`
	AlertID        string         `json:"alert_id"`
	SensorID       int64          `json:"sensor_id"`
	Sensor         *sensorOut     `json:"sensor"`
	MetricType     string         `json:"metric_type"`
	Severity       model.Severity `json:"severity"`
	Status         string         `json:"status"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Category       *string        `json:"category"`
	TriggerValue   *float64       `json:"trigger_value"`
	ThresholdValue *float64       `json:"threshold_value"`
	AcknowledgedAt *apiTime       `json:"acknowledged_at"`
	ResolvedAt     *apiTime       `json:"resolved_at"`
	CreatedAt      apiTime        `json:"created_at"`
}

func (a alertOut) toModel() model.Alert {
	out := model.Alert{
		ID:             a.ID,
		AlertID:        a.AlertID,
		SensorID:       a.SensorID,
		MetricType:     a.MetricType,
		Severity:       a.Severity,
		Status:         model.AlertStatus(a.Status),
		Title:          a.Title,
		Message:        a.Message,
		TriggerValue:   a.TriggerValue,
		ThresholdValue: a.ThresholdValue,
		CreatedAt:      a.CreatedAt.Time,
	}
	if a.Sensor != nil {
		out.SensorName = a.Sensor.Name
	}
	if a.Category != nil {
		out.Category = *a.Category
	}
	if a.AcknowledgedAt != nil {
		ts := a.AcknowledgedAt.Time
		out.AcknowledgedAt = &ts
	}
	if a.ResolvedAt != nil {
		ts := a.ResolvedAt.Time
		out.ResolvedAt = &ts
	}
	return out
}

type metricOut struct {
	ID         int64      `json:"id"`
	SensorID   int64      `json:"sensor_id"`
	MetricType string     `json:"metric_type"`
	Value      float64    `json:"value"`
	Ts         apiTime    `json:"ts"`
	Sensor     *sensorOut `json:"sensor"`
}

func (m metricOut) toModel() model.SensorReading {
	out := model.SensorReading{
		SensorID:   m.SensorID,
		MetricType: m.MetricType,
		Value:      m.Value,
		Timestamp:  m.Ts.Time,
	}
	if m.Sensor != nil {
		out.SensorName = m.Sensor.Name
	}
	return out
}
