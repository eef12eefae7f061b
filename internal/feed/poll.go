package feed

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/citypulse/dashboard/internal/api"
	"github.com/citypulse/dashboard/internal/event"
)

const (
	// DefaultPollInterval is how often the REST poller asks for news
	DefaultPollInterval = 15 * time.Second

	pollAlertLimit   = 100
	pollReadingLimit = 100
)

// Poller synthesizes feed events from periodic REST calls, for
// backends with no push channel. Alerts seen in the first cycle are
// treated as history, not news.
type Poller struct {
	client   *api.Client
	interval time.Duration
	log      *zap.Logger

	seenAlerts map[string]struct{} // key: alert_id
	primed     bool
	watermark  time.Time // newest reading timestamp forwarded so far
}

// NewPoller creates a REST polling feed source
func NewPoller(client *api.Client, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:     client,
		interval:   interval,
		log:        logger,
		seenAlerts: make(map[string]struct{}),
	}
}

// Run polls until ctx is cancelled. The first cycle runs immediately.
func (p *Poller) Run(ctx context.Context, out chan<- event.Event) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx, out)
		}
	}
}

func (p *Poller) poll(ctx context.Context, out chan<- event.Event) {
	p.pollReadings(ctx, out)
	p.pollAlerts(ctx, out)
}

func (p *Poller) pollReadings(ctx context.Context, out chan<- event.Event) {
	readings, err := p.client.RecentReadings(ctx, pollReadingLimit)
	if err != nil {
		p.log.Warn("Polling readings failed", zap.Error(err))
		return
	}

	// Forward oldest first so series keep their order
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	newest := p.watermark
	for _, r := range readings {
		if !r.Timestamp.After(p.watermark) {
			continue
		}
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
		select {
		case out <- event.SensorUpdate{Reading: r}:
		case <-ctx.Done():
			return
		}
	}
	p.watermark = newest
}

func (p *Poller) pollAlerts(ctx context.Context, out chan<- event.Event) {
	alerts, err := p.client.ListAlerts(ctx, pollAlertLimit)
	if err != nil {
		p.log.Warn("Polling alerts failed", zap.Error(err))
		return
	}

	first := !p.primed
	p.primed = true

	for _, a := range alerts {
		if _, seen := p.seenAlerts[a.AlertID]; seen {
			continue
		}
		p.seenAlerts[a.AlertID] = struct{}{}
		if first {
			// The seed fetch already delivered these
			continue
		}
		select {
		case out <- event.NewAlert{Alert: a}:
		case <-ctx.Done():
			return
		}
	}
}
