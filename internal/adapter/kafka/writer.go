// Package kafka publishes scored readings to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/envwatch-service/internal/config"
	"github.com/couchcryptid/envwatch-service/internal/domain"
)

// Writer produces assessment messages to the readings topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured readings topic.
// Messages are keyed by location so each location's readings stay ordered
// within one partition. Readings are published one request at a time, so the
// batch timeout is kept short.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReadingsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes assessments in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, assessments []domain.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(assessments))
	for i := range assessments {
		msg, err := serializeToMessage(assessments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write readings: %w", err)
	}
	w.logger.Debug("readings published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Assessment into a Kafka message.
func serializeToMessage(a domain.Assessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.Reading.Location),
		Value: data,
		Time:  a.Reading.Timestamp,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(a.Reading.Location)},
			{Key: "risk_level", Value: []byte(a.Level)},
			{Key: "observed_at", Value: []byte(a.Reading.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
