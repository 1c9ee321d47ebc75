package kafka

import (
	"context"
	"log/slog"
	"sort"

	"github.com/couchcryptid/wfs-input-generator/internal/config"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes bundles to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured bundle topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaBundleTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchBytes:   cfg.MaxRequestBytes,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes the bundles in a single WriteMessages call. Bundles
// are keyed by request id so answers to one request share a partition.
func (w *Writer) LoadBatch(ctx context.Context, msgs []domain.OutputMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]kafkago.Message, len(msgs))
	for i := range msgs {
		out[i] = toKafkaMessage(msgs[i])
	}
	if err := w.writer.WriteMessages(ctx, out...); err != nil {
		return err
	}
	w.logger.Debug("bundles published", "count", len(out), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// toKafkaMessage copies headers in key order so that identical bundles
// produce identical messages.
func toKafkaMessage(msg domain.OutputMessage) kafkago.Message {
	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kafkago.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafkago.Header{Key: k, Value: []byte(msg.Headers[k])}
	}
	return kafkago.Message{Key: msg.Key, Value: msg.Value, Headers: headers}
}
