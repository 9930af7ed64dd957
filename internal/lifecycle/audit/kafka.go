package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaStore appends audit events to a Kafka topic, keyed by subject so one
// subject's lifecycle stays in order within a partition.
type KafkaStore struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaStore connects to the brokers and ensures the audit topic exists.
func NewKafkaStore(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaStore, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 3, 1, nil, topic)
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic %q: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic %q: %w", topic, resp.Err)
	}

	return &KafkaStore{client: client, topic: topic, logger: logger}, nil
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.SubjectID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		s.logger.ErrorContext(ctx, "audit event publish failed",
			"action", event.Action,
			"subject_id", event.SubjectID,
			"error", err,
		)
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// ListBySubject is not supported on the Kafka sink; compliance reads happen
// from the consumer side.
func (s *KafkaStore) ListBySubject(context.Context, string) ([]Event, error) {
	return nil, errors.New("kafka audit store is write-only")
}

func (s *KafkaStore) Close() {
	s.client.Close()
}
