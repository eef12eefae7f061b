package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/citypulse/dashboard/internal/model"
)

// Type represents the type of feed event
type Type string

const (
	TypeSensorUpdate  Type = "sensor_update"
	TypeNewAlert      Type = "new_alert"
	TypeAuthenticated Type = "authenticated"
)

// Event is one normalized feed event. Concrete types are
// SensorUpdate, NewAlert and Authenticated.
type Event interface {
	eventType() Type
}

// baseEvent is the common envelope for all feed events
type baseEvent struct {
	Type Type `json:"type"`
}

// SensorUpdate carries a single sensor measurement
type SensorUpdate struct {
	Reading model.SensorReading
}

func (SensorUpdate) eventType() Type { return TypeSensorUpdate }

// NewAlert announces an alert freshly raised by the backend
type NewAlert struct {
	Alert model.Alert
}

func (NewAlert) eventType() Type { return TypeNewAlert }

// Authenticated reports the outcome of the session handshake on the
// push channel
type Authenticated struct {
	Success bool
	User    model.User
}

func (Authenticated) eventType() Type { return TypeAuthenticated }

// sensorUpdatePayload is the wire shape of a sensor_update event.
// Value is decoded loosely because some feeds deliver it as a string
// or omit it entirely.
type sensorUpdatePayload struct {
	Type       Type        `json:"type"`
	SensorID   int64       `json:"sensor_id"`
	SensorName string      `json:"sensor_name"`
	MetricType string      `json:"metric_type"`
	Value      interface{} `json:"value"`
	Timestamp  string      `json:"timestamp"`
}

// alertPayload is the wire shape of the alert object inside a new_alert event
type alertPayload struct {
	ID             int64          `json:"id"`
	AlertID        string         `json:"alert_id"`
	SensorID       int64          `json:"sensor_id"`
	SensorName     string         `json:"sensor_name"`
	MetricType     string         `json:"metric_type"`
	Severity       model.Severity `json:"severity"`
	Status         string         `json:"status"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Category       string         `json:"category"`
	TriggerValue   *float64       `json:"trigger_value"`
	ThresholdValue *float64       `json:"threshold_value"`
	CreatedAt      string         `json:"created_at"`
}

type newAlertPayload struct {
	Type      Type         `json:"type"`
	Alert     alertPayload `json:"alert"`
	Timestamp string       `json:"timestamp"`
}

type authenticatedPayload struct {
	Type    Type       `json:"type"`
	Success bool       `json:"success"`
	User    model.User `json:"user"`
}

// ErrUnknownType marks an event whose type tag this version does not
// understand. Consumers skip these instead of failing the feed.
var ErrUnknownType = &ParseError{"unknown event type"}

// ParseError represents an event parsing error
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string {
	return e.msg
}

// Parse parses one JSON feed frame into the appropriate event type
func Parse(data []byte) (Event, error) {
	var base baseEvent
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch base.Type {
	case TypeSensorUpdate:
		var p sensorUpdatePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid sensor_update event: %w", err)
		}
		return SensorUpdate{Reading: model.SensorReading{
			SensorID:   p.SensorID,
			SensorName: p.SensorName,
			MetricType: p.MetricType,
			Value:      coerceValue(p.Value),
			Timestamp:  parseTimestamp(p.Timestamp),
		}}, nil

	case TypeNewAlert:
		var p newAlertPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid new_alert event: %w", err)
		}
		if p.Alert.AlertID == "" {
			return nil, fmt.Errorf("new_alert event missing alert_id")
		}
		return NewAlert{Alert: model.Alert{
			ID:             p.Alert.ID,
			AlertID:        p.Alert.AlertID,
			SensorID:       p.Alert.SensorID,
			SensorName:     p.Alert.SensorName,
			MetricType:     p.Alert.MetricType,
			Severity:       p.Alert.Severity,
			Status:         alertStatus(p.Alert.Status),
			Title:          p.Alert.Title,
			Message:        p.Alert.Message,
			Category:       p.Alert.Category,
			TriggerValue:   p.Alert.TriggerValue,
			ThresholdValue: p.Alert.ThresholdValue,
			CreatedAt:      parseTimestamp(p.Alert.CreatedAt),
		}}, nil

	case TypeAuthenticated:
		var p authenticatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid authenticated event: %w", err)
		}
		return Authenticated{Success: p.Success, User: p.User}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, base.Type)
	}
}

// coerceValue converts a loosely typed wire value to a float64.
// Anything that is not a JSON number comes back as 0.
func coerceValue(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return 0
	}
}

// Wire timestamps arrive either as RFC3339 or as a naive ISO string
// without a zone. Naive timestamps are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}

func alertStatus(s string) model.AlertStatus {
	if s == "" {
		return model.StatusActive
	}
	return model.AlertStatus(s)
}
