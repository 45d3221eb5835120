package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventTypeHeader = "event_type"

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes order events keyed by order id, so every event of one
// order lands on the same partition in order.
type Kafka struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewKafka(writer MessageWriter, logger *zap.Logger) *Kafka {
	return &Kafka{
		writer: writer,
		logger: logger.With(zap.String("component", "kafka_publisher")),
	}
}

func (k *Kafka) Publish(ctx context.Context, event domain.OrderEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", event.Type, err)
	}

	k.logger.Debug("event published",
		zap.String("event_type", string(event.Type)),
		zap.Stringer("order_id", event.OrderID),
	)

	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

func encode(event domain.OrderEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}, nil
}
