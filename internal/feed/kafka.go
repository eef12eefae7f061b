package feed

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/citypulse/dashboard/internal/event"
)

// KafkaSource consumes feed events from a Kafka topic. Each message
// body is one JSON event envelope; offsets are committed only after
// the event has been handed to the dashboard.
type KafkaSource struct {
	reader *kafka.Reader
	log    *zap.Logger
}

// NewKafkaSource creates a consumer-group feed source
func NewKafkaSource(brokers []string, topic, groupID string, logger *zap.Logger) *KafkaSource {
	return &KafkaSource{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       1,    // 1 byte
			MaxBytes:       10e6, // 10MB
			CommitInterval: 0,    // commit only what was delivered
			StartOffset:    kafka.LastOffset,
		}),
		log: logger,
	}
}

// Run consumes until ctx is cancelled
func (s *KafkaSource) Run(ctx context.Context, out chan<- event.Event) error {
	defer s.reader.Close()

	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("Failed to fetch feed message", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		ev, err := event.Parse(msg.Value)
		if err != nil {
			// Unknown and malformed messages are skipped, not retried
			if !errors.Is(err, event.ErrUnknownType) {
				s.log.Warn("Dropping malformed feed message",
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
			}
			if err := s.reader.CommitMessages(ctx, msg); err != nil {
				s.log.Warn("Failed to commit offset", zap.Error(err))
			}
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := s.reader.CommitMessages(ctx, msg); err != nil {
			s.log.Warn("Failed to commit offset", zap.Error(err))
		}
	}
}
