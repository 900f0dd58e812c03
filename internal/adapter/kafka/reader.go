package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kkartas/metdata/internal/config"
	"github.com/kkartas/metdata/internal/pipeline"
)

// Reader consumes raw observation rows from the source topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger

	// batchWait bounds how long ExtractBatch waits for a full batch before
	// returning what it has.
	batchWait time.Duration
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaSourceTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits only
	})
	return &Reader{reader: r, logger: logger, batchWait: 500 * time.Millisecond}
}

// ExtractBatch fetches up to batchSize messages, waiting at most the batch
// window for stragglers. A batch returns as soon as the window closes or
// the size cap is hit.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]pipeline.RawEvent, error) {
	batch := make([]pipeline.RawEvent, 0, batchSize)
	deadline := time.Now().Add(r.batchWait)

	for len(batch) < batchSize {
		fetchCtx, cancel := context.WithDeadline(ctx, deadline)
		msg, err := r.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break
			}
			if ctx.Err() != nil {
				return batch, nil
			}
			return nil, err
		}
		batch = append(batch, r.toRawEvent(msg))
	}
	return batch, nil
}

func (r *Reader) toRawEvent(msg kafkago.Message) pipeline.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return pipeline.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
