package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return NewClient(url, "test-token", time.Second, zap.NewNop())
}

func TestClient_ListSensors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sensors" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Expected bearer header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": 1,
				"name": "Main St Traffic Cam",
				"sensor_type": {"name": "traffic_camera", "category": "traffic", "unit": "vehicles/h"},
				"status": "active",
				"battery_level": 87.5,
				"created_at": "2026-08-01T08:00:00Z"
			},
			{
				"id": 2,
				"name": "Riverside AQ Station",
				"sensor_type": {"name": "aq_station", "category": "environment", "unit": "AQI"},
				"status": "inactive",
				"location_address": "12 River Rd",
				"created_at": "2026-08-01T08:00:00.123456"
			}
		]`))
	}))
	defer server.Close()

	sensors, err := newTestClient(server.URL).ListSensors(context.Background())
	if err != nil {
		t.Fatalf("ListSensors failed: %v", err)
	}
	if len(sensors) != 2 {
		t.Fatalf("Expected 2 sensors, got %d", len(sensors))
	}
	if sensors[0].Category != "traffic" || sensors[0].Unit != "vehicles/h" {
		t.Errorf("Sensor type not flattened: %+v", sensors[0])
	}
	if sensors[0].BatteryLevel == nil || *sensors[0].BatteryLevel != 87.5 {
		t.Errorf("Expected battery level 87.5, got %v", sensors[0].BatteryLevel)
	}
	if sensors[1].LocationAddress != "12 River Rd" {
		t.Errorf("Expected location address, got %q", sensors[1].LocationAddress)
	}
	want := time.Date(2026, 8, 1, 8, 0, 0, 123456000, time.UTC)
	if !sensors[1].CreatedAt.Equal(want) {
		t.Errorf("Naive timestamp parsed wrong: %v", sensors[1].CreatedAt)
	}
}

func TestClient_ListAlertsPassesLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "250" {
			t.Errorf("Expected limit=250, got %q", got)
		}
		w.Write([]byte(`[
			{
				"id": 9,
				"alert_id": "ALERT-AQI-7F3A21BC",
				"sensor_id": 2,
				"sensor": {"id": 2, "name": "Riverside AQ Station", "sensor_type": {"category": "environment"}},
				"metric_type": "air_quality",
				"severity": "critical",
				"status": "active",
				"title": "Air quality critical",
				"message": "AQI exceeded 300",
				"category": "environment",
				"created_at": "2026-08-21T10:31:02Z"
			}
		]`))
	}))
	defer server.Close()

	alerts, err := newTestClient(server.URL).ListAlerts(context.Background(), 250)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].SensorName != "Riverside AQ Station" {
		t.Errorf("Expected sensor name from nested object, got %q", alerts[0].SensorName)
	}
	if alerts[0].Category != "environment" {
		t.Errorf("Expected category environment, got %q", alerts[0].Category)
	}
}

func TestClient_AcknowledgeAlert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/alerts/9/acknowledge" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["notes"] != "on it" {
			t.Errorf("Expected notes in body, got %v", body)
		}
		w.Write([]byte(`{
			"id": 9,
			"alert_id": "ALERT-AQI-7F3A21BC",
			"status": "acknowledged",
			"acknowledged_at": "2026-08-21T11:00:00Z",
			"created_at": "2026-08-21T10:31:02Z"
		}`))
	}))
	defer server.Close()

	alert, err := newTestClient(server.URL).AcknowledgeAlert(context.Background(), 9, "on it")
	if err != nil {
		t.Fatalf("AcknowledgeAlert failed: %v", err)
	}
	if alert.Status != "acknowledged" {
		t.Errorf("Expected acknowledged status, got %s", alert.Status)
	}
	if alert.AcknowledgedAt == nil {
		t.Error("Expected acknowledged_at to be set")
	}
}

func TestClient_ResolveAlert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alerts/9/resolve" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["resolution"] != "sensor recalibrated" {
			t.Errorf("Expected resolution in body, got %v", body)
		}
		w.Write([]byte(`{
			"id": 9,
			"alert_id": "ALERT-AQI-7F3A21BC",
			"status": "resolved",
			"resolved_at": "2026-08-21T12:00:00Z",
			"created_at": "2026-08-21T10:31:02Z"
		}`))
	}))
	defer server.Close()

	alert, err := newTestClient(server.URL).ResolveAlert(context.Background(), 9, "sensor recalibrated", "")
	if err != nil {
		t.Fatalf("ResolveAlert failed: %v", err)
	}
	if alert.Status != "resolved" || alert.ResolvedAt == nil {
		t.Errorf("Expected resolved alert with timestamp, got %+v", alert)
	}
}

func TestClient_RecentReadings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metrics/recent" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id": 1, "sensor_id": 3, "metric_type": "noise_level", "value": 71.2, "ts": "2026-08-21T10:00:00Z"}
		]`))
	}))
	defer server.Close()

	readings, err := newTestClient(server.URL).RecentReadings(context.Background(), 50)
	if err != nil {
		t.Fatalf("RecentReadings failed: %v", err)
	}
	if len(readings) != 1 || readings[0].Value != 71.2 {
		t.Errorf("Unexpected readings: %+v", readings)
	}
}

func TestClient_UnauthorizedFiresCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	fired := false
	client.OnUnauthorized(func() { fired = true })

	_, err := client.ListSensors(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if !fired {
		t.Error("Expected unauthorized callback to fire")
	}
}

func TestClient_ServerErrorReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListAlerts(context.Background(), 0)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", statusErr.Code)
	}
}

func TestClient_TransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	if _, err := newTestClient(server.URL).ListSensors(context.Background()); err == nil {
		t.Error("Expected error for unreachable backend")
	}
}
