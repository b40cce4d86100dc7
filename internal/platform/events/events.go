// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeLeaveStatusChanged = "leave.status_changed"
	TypeLeaveSubmitted     = "leave.submitted"
	TypeTimesheetSubmitted = "timesheet.submitted"
)

type Event struct {
	Type        string    `json:"type"`
	AggregateID string    `json:"aggregateId"`
	OccurredAt  time.Time `json:"occurredAt"`
	RequestID   string    `json:"requestId,omitempty"`
	Data        any       `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

// Writer is the part of kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer Writer
	topic  string
	log    *zap.Logger
}

// New returns a Kafka publisher, or a no-op one when no brokers are set.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return noopPublisher{}
	}
	return NewWithWriter(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		AllowAutoTopicCreation: true,
	}, topic)
}

func NewWithWriter(w Writer, topic string) Publisher {
	return &kafkaPublisher{writer: w, topic: topic, log: zap.L().Named("events.kafka")}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafkago.Message{
		Topic: p.topic,
		Key:   []byte(event.AggregateID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("publish failed", zap.String("type", event.Type), zap.Error(err))
		return err
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
