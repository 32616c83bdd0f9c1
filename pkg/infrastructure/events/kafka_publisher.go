package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer used by the publisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the wire format of events on the outbound topic
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	StreamID  string          `json:"stream_id"`
	Version   int             `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaWriter creates a writer keyed by stream id so events of one aggregate stay ordered
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewKafkaPublisher(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Data())
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Type(), err)
	}
	value, err := json.Marshal(Envelope{
		EventID:   event.ID(),
		EventType: event.Type(),
		StreamID:  event.StreamID(),
		Version:   event.Version(),
		Timestamp: event.Timestamp(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event.Type(), err)
	}

	msg := kafka.Message{
		Key:   []byte(event.StreamID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", event.Type(), err)
	}
	p.logger.Debug("event published", zap.String("event_type", event.Type()), zap.String("stream_id", event.StreamID()))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// FanOut publishes every event to all publishers and reports the joined failures
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
