package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/citypulse/dashboard/internal/model"
)

// DefaultBaseURL points at a locally running monitoring backend
const DefaultBaseURL = "http://localhost:8000/api/v1"

// Client talks to the monitoring backend's REST API. All requests
// carry the bearer credential; a 401 response fires the registered
// unauthorized callback so the dashboard can drop the session.
type Client struct {
	baseURL        string
	token          string
	http           *http.Client
	log            *zap.Logger
	onUnauthorized func()
}

// NewClient creates a backend API client
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// OnUnauthorized registers the callback fired when the backend
// rejects the credential
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// ListSensors fetches all sensors
func (c *Client) ListSensors(ctx context.Context) ([]model.Sensor, error) {
	var out []sensorOut
	if err := c.get(ctx, "/sensors", nil, &out); err != nil {
		return nil, err
	}

	sensors := make([]model.Sensor, 0, len(out))
	for _, s := range out {
		sensors = append(sensors, s.toModel())
	}
	return sensors, nil
}

// ListAlerts fetches the most recent alerts. The backend caps limit
// at 1000 and defaults to 100 when limit is not positive.
func (c *Client) ListAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out []alertOut
	if err := c.get(ctx, "/alerts", params, &out); err != nil {
		return nil, err
	}

	alerts := make([]model.Alert, 0, len(out))
	for _, a := range out {
		alerts = append(alerts, a.toModel())
	}
	return alerts, nil
}

// RecentReadings fetches the latest sensor readings, used by the
// polling feed
func (c *Client) RecentReadings(ctx context.Context, limit int) ([]model.SensorReading, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out []metricOut
	if err := c.get(ctx, "/metrics/recent", params, &out); err != nil {
		return nil, err
	}

	readings := make([]model.SensorReading, 0, len(out))
	for _, m := range out {
		readings = append(readings, m.toModel())
	}
	return readings, nil
}

// AcknowledgeAlert acknowledges an alert on the backend and returns
// the updated alert
func (c *Client) AcknowledgeAlert(ctx context.Context, id int64, notes string) (model.Alert, error) {
	body := struct {
		Notes string `json:"notes,omitempty"`
	}{Notes: notes}

	var out alertOut
	if err := c.post(ctx, fmt.Sprintf("/alerts/%d/acknowledge", id), body, &out); err != nil {
		return model.Alert{}, err
	}
	return out.toModel(), nil
}

// ResolveAlert resolves an alert on the backend and returns the
// updated alert
func (c *Client) ResolveAlert(ctx context.Context, id int64, resolution, notes string) (model.Alert, error) {
	body := struct {
		Resolution string `json:"resolution"`
		Notes      string `json:"notes,omitempty"`
	}{Resolution: resolution, Notes: notes}

	var out alertOut
	if err := c.post(ctx, fmt.Sprintf("/alerts/%d/resolve", id), body, &out); err != nil {
		return model.Alert{}, err
	}
	return out.toModel(), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, v)
}

func (c *Client) post(ctx context.Context, path string, body, v interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, v)
}

func (c *Client) do(req *http.Request, v interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn("Backend rejected credential",
			zap.String("path", req.URL.Path),
		)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ErrUnauthorized is returned when the backend rejects the bearer
// credential
var ErrUnauthorized = &ClientError{"unauthorized"}

// ClientError represents an API client error
type ClientError struct {
	msg string
}

func (e *ClientError) Error() string {
	return e.msg
}

// StatusError is returned for non-2xx responses other than 401
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}
