package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/water-safety-service/internal/config"
	"github.com/couchcryptid/water-safety-service/internal/domain"
)

// Writer publishes verdict events to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured verdict topic.
// Messages are keyed by system ID so each system's verdicts stay ordered.
// Verdicts are written one at a time on the request path, so a batch holds
// one message and is flushed immediately.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaVerdictTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishVerdict serializes and writes one verdict event.
func (w *Writer) PublishVerdict(ctx context.Context, event domain.VerdictEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write verdict %s: %w", event.ResolutionID, err)
	}
	w.logger.Debug("verdict published",
		"resolution_id", event.ResolutionID,
		"system_id", event.Utility.SystemID,
		"topic", w.writer.Topic,
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a VerdictEvent into a Kafka message.
func serializeToMessage(event domain.VerdictEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize verdict event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Utility.SystemID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "tier", Value: []byte(event.Tier.String())},
			{Key: "resolved_at", Value: []byte(event.ResolvedAt.Format(time.RFC3339))},
		},
	}, nil
}
