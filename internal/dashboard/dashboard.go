// Package dashboard wires the stores, the backend client and the
// live feed into one engine. A single goroutine applies feed events,
// so store mutations happen in arrival order.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/citypulse/dashboard/internal/alerts"
	"github.com/citypulse/dashboard/internal/api"
	"github.com/citypulse/dashboard/internal/demo"
	"github.com/citypulse/dashboard/internal/event"
	"github.com/citypulse/dashboard/internal/feed"
	"github.com/citypulse/dashboard/internal/metrics"
	"github.com/citypulse/dashboard/internal/model"
	"github.com/citypulse/dashboard/internal/notify"
	"github.com/citypulse/dashboard/internal/sensors"
	"github.com/citypulse/dashboard/internal/view"
)

// DefaultSeedAlertLimit is how many alerts the startup fetch asks for
const DefaultSeedAlertLimit = 100

// Dashboard owns the in-memory state behind the operator dashboard
type Dashboard struct {
	log      *zap.Logger
	client   *api.Client
	source   feed.Source
	sensors  *sensors.Registry
	alerts   *alerts.Store
	engine   *metrics.Engine
	notifier *notify.Center

	events    chan event.Event
	seedLimit int

	mu         sync.RWMutex
	authorized bool
	user       model.User
}

// New creates a dashboard around the given collaborators. The
// client's unauthorized callback is claimed by the dashboard.
func New(
	client *api.Client,
	source feed.Source,
	registry *sensors.Registry,
	store *alerts.Store,
	engine *metrics.Engine,
	notifier *notify.Center,
	logger *zap.Logger,
) *Dashboard {
	d := &Dashboard{
		log:        logger,
		client:     client,
		source:     source,
		sensors:    registry,
		alerts:     store,
		engine:     engine,
		notifier:   notifier,
		events:     make(chan event.Event, 256),
		seedLimit:  DefaultSeedAlertLimit,
		authorized: true,
	}
	client.OnUnauthorized(func() {
		d.dropSession("backend rejected credential")
	})
	return d
}

// SetSeedLimit overrides how many alerts the startup fetch asks for.
// Call before Run; values below 1 are ignored.
func (d *Dashboard) SetSeedLimit(n int) {
	if n > 0 {
		d.seedLimit = n
	}
}

// Run seeds the stores, starts the feed and applies events until ctx
// is cancelled
func (d *Dashboard) Run(ctx context.Context) error {
	d.seed(ctx)

	if d.source != nil {
		go func() {
			if err := d.source.Run(ctx, d.events); err != nil && ctx.Err() == nil {
				d.log.Error("Feed source stopped", zap.Error(err))
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			d.dispatch(ev)
		}
	}
}

// seed races the sensor and alert fetches. Each one applies its own
// result; each one independently falls back to fixture data on
// failure so the dashboard never starts empty.
func (d *Dashboard) seed(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		fetched, err := d.client.ListSensors(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.log.Warn("Sensor fetch failed, using fixture data", zap.Error(err))
			fetched = demo.Sensors()
			for _, r := range demo.Readings(time.Now().UTC()) {
				d.engine.Ingest(r)
			}
		}
		d.sensors.ReplaceAll(fetched)
		d.log.Info("Sensors loaded", zap.Int("count", len(fetched)))
	}()

	go func() {
		defer wg.Done()
		fetched, err := d.client.ListAlerts(ctx, d.seedLimit)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.log.Warn("Alert fetch failed, using fixture data", zap.Error(err))
			fetched = demo.Alerts(time.Now().UTC())
		}
		d.alerts.ReplaceAll(fetched)
		d.log.Info("Alerts loaded", zap.Int("count", len(fetched)))
	}()

	wg.Wait()
}

// dispatch applies one feed event to the stores
func (d *Dashboard) dispatch(ev event.Event) {
	switch e := ev.(type) {
	case event.SensorUpdate:
		d.engine.Ingest(e.Reading)
		d.sensors.Touch(e.Reading.SensorID, e.Reading.Timestamp)

	case event.NewAlert:
		if !d.alerts.Record(e.Alert) {
			return
		}
		d.notifier.Push(e.Alert.Title, e.Alert.Message, e.Alert.Severity)
		d.log.Info("New alert",
			zap.String("alert_id", e.Alert.AlertID),
			zap.String("severity", string(e.Alert.Severity)),
		)

	case event.Authenticated:
		if !e.Success {
			d.dropSession("push channel rejected credential")
			return
		}
		d.mu.Lock()
		d.authorized = true
		d.user = e.User
		d.mu.Unlock()
		d.log.Info("Session confirmed", zap.String("user", e.User.Email))
	}
}

// Acknowledge moves an active alert to acknowledged. The backend is
// asked first; local state changes only after it agrees.
func (d *Dashboard) Acknowledge(ctx context.Context, alertID, notes string) (model.Alert, error) {
	a, ok := d.alerts.Get(alertID)
	if !ok {
		return model.Alert{}, alerts.ErrNotFound
	}
	if !alerts.CanAcknowledge(a) {
		return model.Alert{}, alerts.ErrIllegalTransition
	}

	confirmed, err := d.client.AcknowledgeAlert(ctx, a.ID, notes)
	if err != nil {
		return model.Alert{}, fmt.Errorf("acknowledge %s: %w", alertID, err)
	}

	at := time.Now().UTC()
	if confirmed.AcknowledgedAt != nil {
		at = *confirmed.AcknowledgedAt
	}
	updated, err := d.alerts.MarkAcknowledged(alertID, at)
	if err != nil {
		return model.Alert{}, err
	}

	d.notifier.Push("Alert acknowledged", updated.Title, model.SeverityLow)
	return updated, nil
}

// Resolve closes an alert with a resolution text. An empty resolution
// aborts before anything reaches the backend.
func (d *Dashboard) Resolve(ctx context.Context, alertID, resolution, notes string) (model.Alert, error) {
	if strings.TrimSpace(resolution) == "" {
		return model.Alert{}, ErrEmptyResolution
	}

	a, ok := d.alerts.Get(alertID)
	if !ok {
		return model.Alert{}, alerts.ErrNotFound
	}
	if !alerts.CanResolve(a) {
		return model.Alert{}, alerts.ErrIllegalTransition
	}

	confirmed, err := d.client.ResolveAlert(ctx, a.ID, resolution, notes)
	if err != nil {
		return model.Alert{}, fmt.Errorf("resolve %s: %w", alertID, err)
	}

	at := time.Now().UTC()
	if confirmed.ResolvedAt != nil {
		at = *confirmed.ResolvedAt
	}
	updated, err := d.alerts.MarkResolved(alertID, resolution, at)
	if err != nil {
		return model.Alert{}, err
	}

	d.notifier.Push("Alert resolved", updated.Title, model.SeverityLow)
	return updated, nil
}

// DismissNotification removes a notification ahead of its expiry
func (d *Dashboard) DismissNotification(id string) {
	d.notifier.Dismiss(id)
}

// Sensors returns the known sensors
func (d *Dashboard) Sensors() []model.Sensor {
	return d.sensors.All()
}

// Alerts returns the alerts passing the filter, newest first
func (d *Dashboard) Alerts(f view.Filter) []model.Alert {
	return view.FilteredAlerts(d.alerts.All(), f)
}

// Summaries returns the derived metric summaries
func (d *Dashboard) Summaries() map[string]metrics.Summary {
	return d.engine.Summarize()
}

// Summary returns the summary for one metric type, if any readings
// for it have been retained
func (d *Dashboard) Summary(metricType string) (metrics.Summary, bool) {
	return d.engine.SummarizeType(metricType)
}

// Notifications returns the visible notifications, newest first
func (d *Dashboard) Notifications() []model.Notification {
	return d.notifier.Active()
}

// Overview returns the overview card
func (d *Dashboard) Overview() view.Stats {
	return view.Overview(d.sensors.All(), d.alerts.All(), time.Now().UTC())
}

// Authorized reports whether the backend still accepts our credential
func (d *Dashboard) Authorized() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.authorized
}

// User returns the operator the push channel authenticated, if any
func (d *Dashboard) User() model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.user
}

// Snapshot bundles everything a rendering client needs in one read
type Snapshot struct {
	Stats         view.Stats                 `json:"stats"`
	Sensors       []model.Sensor             `json:"sensors"`
	Alerts        []model.Alert              `json:"alerts"`
	Metrics       map[string]metrics.Summary `json:"metrics"`
	Notifications []model.Notification       `json:"notifications"`
	Authorized    bool                       `json:"authorized"`
	User          model.User                 `json:"user"`
}

// Snapshot assembles the full dashboard state
func (d *Dashboard) Snapshot() Snapshot {
	return Snapshot{
		Stats:         d.Overview(),
		Sensors:       d.sensors.All(),
		Alerts:        d.alerts.All(),
		Metrics:       d.engine.Summarize(),
		Notifications: d.notifier.Active(),
		Authorized:    d.Authorized(),
		User:          d.User(),
	}
}

// dropSession marks the credential dead and surfaces it once
func (d *Dashboard) dropSession(reason string) {
	d.mu.Lock()
	wasAuthorized := d.authorized
	d.authorized = false
	d.mu.Unlock()

	if !wasAuthorized {
		return
	}
	d.log.Warn("Session dropped", zap.String("reason", reason))
	d.notifier.Push("Session expired", "Sign in again to keep managing alerts", model.SeverityHigh)
}

// ErrEmptyResolution rejects a resolve with no resolution text
var ErrEmptyResolution = &ActionError{"resolution text is required"}

// ActionError represents a rejected dashboard action
type ActionError struct {
	msg string
}

func (e *ActionError) Error() string {
	return e.msg
}
