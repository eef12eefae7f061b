// Package demo holds the fixture data the dashboard falls back to
// when the monitoring backend cannot be reached at startup.
package demo

import (
	"time"

	"github.com/citypulse/dashboard/internal/model"
)

func ptr(v float64) *float64 { return &v }

// Sensors returns a plausible slice of the city sensor network
func Sensors() []model.Sensor {
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return []model.Sensor{
		{
			ID:              1,
			Name:            "Main St Traffic Cam",
			Category:        "traffic",
			Unit:            "vehicles/h",
			Status:          model.SensorActive,
			LocationLat:     ptr(47.6097),
			LocationLng:     ptr(-122.3331),
			LocationAddress: "Main St & 5th Ave",
			BatteryLevel:    ptr(91),
			SignalStrength:  ptr(-62),
			CreatedAt:       created,
		},
		{
			ID:              2,
			Name:            "Riverside AQ Station",
			Category:        "environment",
			Unit:            "AQI",
			Status:          model.SensorActive,
			LocationLat:     ptr(47.6205),
			LocationLng:     ptr(-122.3493),
			LocationAddress: "12 River Rd",
			BatteryLevel:    ptr(78),
			SignalStrength:  ptr(-71),
			CreatedAt:       created,
		},
		{
			ID:              3,
			Name:            "Harbor Water Gauge",
			Category:        "water",
			Unit:            "m",
			Status:          model.SensorActive,
			LocationLat:     ptr(47.6024),
			LocationLng:     ptr(-122.3418),
			LocationAddress: "Pier 9",
			BatteryLevel:    ptr(64),
			SignalStrength:  ptr(-80),
			CreatedAt:       created,
		},
		{
			ID:              4,
			Name:            "Civic Center Noise Monitor",
			Category:        "environment",
			Unit:            "dB",
			Status:          model.SensorInactive,
			LocationLat:     ptr(47.6038),
			LocationLng:     ptr(-122.3301),
			LocationAddress: "400 Civic Plaza",
			BatteryLevel:    ptr(12),
			SignalStrength:  ptr(-93),
			CreatedAt:       created,
		},
		{
			ID:              5,
			Name:            "Grid Substation Meter",
			Category:        "energy",
			Unit:            "kWh",
			Status:          model.SensorMaintenance,
			LocationLat:     ptr(47.5951),
			LocationLng:     ptr(-122.3326),
			LocationAddress: "Substation 7",
			CreatedAt:       created,
		},
	}
}

// Alerts returns a plausible alert history anchored at now
func Alerts(now time.Time) []model.Alert {
	resolvedAt := now.Add(-3 * time.Hour)
	return []model.Alert{
		{
			ID:             101,
			AlertID:        "ALERT-AQI-0D4E91A2",
			SensorID:       2,
			SensorName:     "Riverside AQ Station",
			MetricType:     "air_quality",
			Severity:       model.SeverityCritical,
			Status:         model.StatusActive,
			Title:          "Air quality critical",
			Message:        "AQI reached 312, above the 300 threshold",
			Category:       "environment",
			TriggerValue:   ptr(312),
			ThresholdValue: ptr(300),
			CreatedAt:      now.Add(-25 * time.Minute),
		},
		{
			ID:             100,
			AlertID:        "ALERT-TRAFFIC-58BC03F7",
			SensorID:       1,
			SensorName:     "Main St Traffic Cam",
			MetricType:     "traffic_flow",
			Severity:       model.SeverityHigh,
			Status:         model.StatusActive,
			Title:          "Heavy congestion on Main St",
			Message:        "Traffic flow dropped below 200 vehicles/h for 15 minutes",
			Category:       "traffic",
			TriggerValue:   ptr(176),
			ThresholdValue: ptr(200),
			CreatedAt:      now.Add(-40 * time.Minute),
		},
		{
			ID:             99,
			AlertID:        "ALERT-NOISE-21A7C4D9",
			SensorID:       4,
			SensorName:     "Civic Center Noise Monitor",
			MetricType:     "noise_level",
			Severity:       model.SeverityMedium,
			Status:         model.StatusAcknowledged,
			Title:          "Sustained noise above 75 dB",
			Message:        "Night-time noise limit exceeded near Civic Plaza",
			Category:       "environment",
			TriggerValue:   ptr(79.4),
			ThresholdValue: ptr(75),
			CreatedAt:      now.Add(-2 * time.Hour),
		},
		{
			ID:             97,
			AlertID:        "ALERT-WATER-9E02B561",
			SensorID:       3,
			SensorName:     "Harbor Water Gauge",
			MetricType:     "water_level",
			Severity:       model.SeverityLow,
			Status:         model.StatusResolved,
			Title:          "Water level above seasonal mean",
			Message:        "Harbor level at 2.4m, 0.3m above seasonal mean",
			Category:       "water",
			TriggerValue:   ptr(2.4),
			ThresholdValue: ptr(2.1),
			ResolvedAt:     &resolvedAt,
			Resolution:     "Level receded after tide change",
			CreatedAt:      now.Add(-6 * time.Hour),
		},
	}
}

// Readings returns seed readings so the metric cards render before
// live data arrives
func Readings(now time.Time) []model.SensorReading {
	out := make([]model.SensorReading, 0, 24)
	base := map[string]float64{
		"traffic_flow": 420,
		"air_quality":  145,
		"water_level":  2.1,
		"noise_level":  58,
	}
	names := map[string]struct {
		id   int64
		name string
	}{
		"traffic_flow": {1, "Main St Traffic Cam"},
		"air_quality":  {2, "Riverside AQ Station"},
		"water_level":  {3, "Harbor Water Gauge"},
		"noise_level":  {4, "Civic Center Noise Monitor"},
	}
	steps := []float64{0, 0.8, -0.5, 1.2, 0.4, -1.1}

	for metricType, value := range base {
		sensor := names[metricType]
		for i, step := range steps {
			out = append(out, model.SensorReading{
				SensorID:   sensor.id,
				SensorName: sensor.name,
				MetricType: metricType,
				Value:      value + step*value/100,
				Timestamp:  now.Add(time.Duration(i-len(steps)) * time.Minute),
			})
		}
	}
	return out
}
