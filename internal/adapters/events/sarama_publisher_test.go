package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestSaramaPublisherWritesEnvelope(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.Event != "payroll.week_paid" || env.Key != "d1" {
			return errors.New("unexpected envelope header fields")
		}
		payload, ok := env.Payload.(map[string]any)
		if !ok || payload["paid"] != true {
			return errors.New("unexpected payload")
		}
		if !env.OccurredAt.Equal(time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)) {
			return errors.New("unexpected occurred_at")
		}
		return nil
	})

	pub := NewSaramaPublisherWithProducer(producer, "transport-ops.events")
	pub.now = func() time.Time { return time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC) }

	err := pub.Publish(context.Background(), "payroll.week_paid", "d1", map[string]any{"paid": true})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSaramaPublisherSurfacesSendError(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewSaramaPublisherWithProducer(producer, "transport-ops.events")
	err := pub.Publish(context.Background(), "route.planned", "job-1", map[string]string{})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = pub.Close()
}

func TestNewSaramaPublisherRequiresBrokers(t *testing.T) {
	if _, err := NewSaramaPublisher(nil, "topic"); err == nil {
		t.Fatal("expected error without brokers")
	}
}
