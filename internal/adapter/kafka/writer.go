package kafka

import (
	"context"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kkartas/metdata/internal/config"
	"github.com/kkartas/metdata/internal/pipeline"
)

// Writer produces canonical observations to the sink topic.
// It implements pipeline.BatchLoader.
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

// LoadBatch publishes the batch in a single WriteMessages call for
// efficiency.
func (w *Writer) LoadBatch(ctx context.Context, events []pipeline.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i, ev := range events {
		msgs[i] = toMessage(ev)
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func toMessage(ev pipeline.OutputEvent) kafkago.Message {
	headers := make([]kafkago.Header, 0, len(ev.Headers))
	for k, v := range ev.Headers {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	return kafkago.Message{
		Key:     ev.Key,
		Value:   ev.Value,
		Headers: headers,
	}
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
