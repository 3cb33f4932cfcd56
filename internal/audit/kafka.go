package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Sink delivers audit events to a durable destination.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
	Close()
}

// KafkaSink publishes audit events to a Kafka topic, keyed by application so
// one application's events stay ordered within a partition.
type KafkaSink struct {
	client *kgo.Client
}

// NewKafkaSink connects a producer to the given brokers and topic.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{client: client}, nil
}

func (s *KafkaSink) Deliver(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	rec := &kgo.Record{
		Key:   []byte(e.ApplicationID),
		Value: payload,
	}
	return s.client.ProduceSync(ctx, rec).FirstErr()
}

func (s *KafkaSink) Close() { s.client.Close() }

// LogSink writes audit events to the structured log. It is the fallback when
// no brokers are configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"event_id", e.ID,
		"kind", e.Kind,
		"application_id", e.ApplicationID,
		"decision", e.Decision,
	)
	return nil
}

func (s *LogSink) Close() {}
