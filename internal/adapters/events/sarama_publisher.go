package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"transport-ops-service/internal/platform/logger"

	"github.com/IBM/sarama"
)

// Envelope is the JSON message written for every published event.
type Envelope struct {
	Event      string    `json:"event"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// SaramaPublisher writes domain events to a single Kafka topic, keyed so that
// events for the same driver or job land on the same partition.
type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewSaramaPublisher(brokers []string, topic string) (*SaramaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("sarama publisher: no brokers configured")
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Net.ReadTimeout = 10 * time.Second
	cfg.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("sarama publisher: create producer: %w", err)
	}

	logger.Info("kafka producer ready", "brokers", brokers, "topic", topic)
	return NewSaramaPublisherWithProducer(producer, topic), nil
}

func NewSaramaPublisherWithProducer(producer sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *SaramaPublisher) Publish(ctx context.Context, event string, key string, payload any) error {
	if p.producer == nil {
		return errors.New("sarama publisher: producer is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(Envelope{
		Event:      event,
		Key:        key,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: encode: %w", event, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(event)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish %s: send: %w", event, err)
	}

	logger.Debug("event published", "event", event, "key", key, "partition", partition, "offset", offset)
	return nil
}

func (p *SaramaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
