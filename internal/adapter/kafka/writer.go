// Package kafka publishes the final district-week table to a sink topic for
// downstream consumers such as the dashboard feed. Ingestion stays
// file-based; this adapter is output transport only.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/config"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// Writer produces district-week records to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishTable serializes and publishes the full table in a single
// WriteMessages call.
func (w *Writer) PublishTable(ctx context.Context, rows []*domain.DistrictWeek) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i, dw := range rows {
		msg, err := serializeToMessage(dw)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish district weeks: %w", err)
	}
	w.logger.Info("district-week feed published", "records", len(rows))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DistrictWeek into a Kafka message keyed by
// its week|state|district identity, with classification metadata in headers.
func serializeToMessage(dw *domain.DistrictWeek) (kafkago.Message, error) {
	data, err := json.Marshal(dw)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize district week: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(dw.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_category", Value: []byte(dw.RiskCategory)},
			{Key: "generated_at", Value: []byte(domain.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
