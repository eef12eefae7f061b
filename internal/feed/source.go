// Package feed delivers live monitoring events to the dashboard.
// Three interchangeable sources exist: a websocket subscription, a
// Kafka consumer group, and a REST poller for backends that push
// nothing at all.
package feed

import (
	"context"

	"github.com/citypulse/dashboard/internal/event"
)

// Source streams normalized events into out until ctx is cancelled
type Source interface {
	Run(ctx context.Context, out chan<- event.Event) error
}

// Modes selectable via configuration
const (
	ModeWebsocket = "websocket"
	ModeKafka     = "kafka"
	ModePoll      = "poll"
)
