package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Event interface {
	ID() string
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

// Publisher delivers committed domain events to the outside world
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	EventID      string
	EventType    string
	Stream       string
	EventData    interface{}
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) ID() string {
	return e.EventID
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

func NewEvent(eventType, streamID string, data interface{}) Event {
	return BaseEvent{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    time.Now().UTC(),
		EventVersion: 1,
	}
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Emit publishes events after a commit. Delivery failures are logged, never returned: the
// transaction they describe has already committed.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, evts ...Event) {
	if p == nil {
		return
	}
	for _, e := range evts {
		if err := p.Publish(ctx, e); err != nil && logger != nil {
			logger.Warn("failed to publish event",
				zap.String("event_type", e.Type()),
				zap.String("stream_id", e.StreamID()),
				zap.Error(err),
			)
		}
	}
}
