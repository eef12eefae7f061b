package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/citypulse/dashboard/internal/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must be less than pongWait

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// WSSource subscribes to the backend's websocket broker and forwards
// every frame it can parse. Lost connections are redialed with capped
// exponential backoff.
type WSSource struct {
	url    string
	token  string
	log    *zap.Logger
	dialer *websocket.Dialer
}

// NewWSSource creates a websocket feed source
func NewWSSource(url, token string, logger *zap.Logger) *WSSource {
	return &WSSource{
		url:    url,
		token:  token,
		log:    logger,
		dialer: websocket.DefaultDialer,
	}
}

// Run dials and reads until ctx is cancelled
func (s *WSSource) Run(ctx context.Context, out chan<- event.Event) error {
	backoff := initialBackoff
	for {
		start := time.Now()
		err := s.consume(ctx, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(start) > time.Minute {
			// The connection held for a while, start backoff over
			backoff = initialBackoff
		}
		s.log.Warn("Websocket feed disconnected",
			zap.String("url", s.url),
			zap.Duration("retry_in", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// consume runs one connection until it breaks
func (s *WSSource) consume(ctx context.Context, out chan<- event.Event) error {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info("Websocket feed connected", zap.String("url", s.url))

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Pings keep the read deadline moving; ctx cancellation closes
	// the connection to unblock ReadMessage.
	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-ctx.Done():
				conn.Close()
				return
			case <-pingDone:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		ev, err := event.Parse(data)
		if err != nil {
			if errors.Is(err, event.ErrUnknownType) {
				s.log.Debug("Skipping unknown feed frame", zap.Error(err))
				continue
			}
			s.log.Warn("Dropping malformed feed frame", zap.Error(err))
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
