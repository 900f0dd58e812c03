//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkartas/metdata/internal/adapter/kafka"
	"github.com/kkartas/metdata/internal/config"
	"github.com/kkartas/metdata/internal/mapping"
	"github.com/kkartas/metdata/internal/observability"
	"github.com/kkartas/metdata/internal/pipeline"
	"github.com/kkartas/metdata/internal/qc"
	"github.com/kkartas/metdata/internal/schema"
)

const (
	testSourceTopic = "test-raw-observations"
	testSinkTopic   = "test-canonical-observations"
)

func testConfig(broker string, suffix string) *config.Config {
	return &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaSourceTopic: testSourceTopic,
		KafkaSinkTopic:   testSinkTopic,
		KafkaGroupID:     fmt.Sprintf("test-%s-%d", suffix, time.Now().UnixNano()),
	}
}

func testMapping() *mapping.Mapping {
	return &mapping.Mapping{
		Version: mapping.CurrentVersion,
		TS:      mapping.TimestampRef{Col: "time"},
		Fields: map[string]mapping.FieldRef{
			schema.TempC: {Col: "temp_f", Unit: "f"},
			schema.RHPct: {Col: "rh"},
		},
	}
}

func newTransformer() *pipeline.QCTransformer {
	sch := schema.Default()
	engine := qc.New(sch, qc.DefaultConfig())
	return pipeline.NewTransformer(sch, testMapping(), engine, mapping.ApplyOptions{},
		observability.NewMetricsForTesting(), discardLogger())
}

// rawRows builds vendor-style observation rows: temp in Fahrenheit, one row
// with an impossible humidity that the range check must flag.
func rawRows(n int) []map[string]string {
	base := time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)
	rows := make([]map[string]string, n)
	for i := range rows {
		rh := "80"
		if i == 3 {
			rh = "150"
		}
		rows[i] = map[string]string{
			"time":   base.Add(time.Duration(i) * 10 * time.Minute).Format("2006-01-02 15:04:05"),
			"temp_f": fmt.Sprintf("%.1f", 32.0+float64(i)*1.8),
			"rh":     rh,
		}
	}
	return rows
}

func publishRows(ctx context.Context, t *testing.T, broker string, rows []map[string]string) {
	t.Helper()
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(rows))
	for i, row := range rows {
		payload, err := json.Marshal(row)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("row-%d", i)),
			Value: payload,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

// sinkMessage holds a deserialized message read from the sink topic.
type sinkMessage struct {
	Obs     pipeline.CanonicalObservation
	Key     string
	Headers map[string]string
}

// readSink reads one message from the sink consumer and deserializes it.
func readSink(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var obs pipeline.CanonicalObservation
	require.NoError(t, json.Unmarshal(msg.Value, &obs), "unmarshal sink message")

	return sinkMessage{Obs: obs, Key: string(msg.Key), Headers: headers}
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor)
// and kafka.Writer (loader) round-trip a batch through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "reader")

	rows := rawRows(2)
	publishRows(ctx, t, broker, rows)

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []pipeline.RawEvent
	for len(batch) < len(rows) {
		more, err := reader.ExtractBatch(ctx, len(rows)-len(batch))
		require.NoError(t, err)
		batch = append(batch, more...)
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for messages from source topic")
		}
	}
	require.Len(t, batch, 2)
	raw := batch[0]
	assert.Equal(t, []byte("row-0"), raw.Key)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	out, err := newTransformer().TransformBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, out, 2)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, out))

	consumer := newSinkConsumer(t, broker)
	sm := readSink(ctx, t, consumer)

	assert.Equal(t, "2024-04-26T00:00:00Z", sm.Key)
	assert.Contains(t, sm.Headers, "processed_at")
	_, err = time.Parse(time.RFC3339, sm.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	require.NotNil(t, sm.Obs.Fields[schema.TempC])
	assert.InDelta(t, 0.0, *sm.Obs.Fields[schema.TempC], 1e-9)
	assert.False(t, sm.Obs.QCAny)
}

// TestPipelineEndToEnd wires the full pipeline (Reader, Transformer, Writer)
// with real Kafka and verifies every row comes out canonical and flagged.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "pipeline")

	rows := rawRows(24)
	publishRows(ctx, t, broker, rows)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make([]sinkMessage, 0, len(rows))
	for len(received) < len(rows) {
		received = append(received, readSink(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Len(t, received, len(rows))

	byTime := make(map[string]sinkMessage, len(received))
	for _, sm := range received {
		byTime[sm.Key] = sm

		assert.Contains(t, sm.Headers, "processed_at", "missing processed_at header")
		assert.Contains(t, sm.Obs.Flags, "qc_temp_c_range")
		assert.Contains(t, sm.Obs.Fields, schema.DewPointC)
	}

	// The row with rh=150 must carry a range flag.
	bad, ok := byTime["2024-04-26T00:30:00Z"]
	require.True(t, ok, "expected flagged row on sink topic")
	assert.True(t, bad.Obs.Flags["qc_rh_pct_range"])
	assert.True(t, bad.Obs.QCAny)

	// A clean row converts Fahrenheit and stays unflagged.
	good, ok := byTime["2024-04-26T00:10:00Z"]
	require.True(t, ok)
	require.NotNil(t, good.Obs.Fields[schema.TempC])
	assert.InDelta(t, 1.0, *good.Obs.Fields[schema.TempC], 1e-9)
	assert.False(t, good.Obs.Flags["qc_rh_pct_range"])
}

// TestPipelineTransformError verifies that a batch poisoned by unparseable
// rows is skipped whole and the pipeline keeps consuming.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "poison")

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Give the pipeline time to consume and skip the poison batch, then
	// publish a valid row and expect it to come out the other side.
	time.Sleep(3 * time.Second)
	publishRows(ctx, t, broker, rawRows(1))

	consumer := newSinkConsumer(t, broker)
	sm := readSink(ctx, t, consumer)
	assert.Equal(t, "2024-04-26T00:00:00Z", sm.Key)
	assert.False(t, sm.Obs.QCAny)

	// Nothing else should arrive: the poison message was skipped, not retried.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no further messages on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
