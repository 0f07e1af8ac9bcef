// Package events publishes domain events to Kafka. Publishing is fire and
// forget from the caller's perspective: services log delivery failures and
// keep going, because an event bus outage must not fail the write that
// produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event names carried on the course-events topic.
const (
	UserEnrolled    = "USER_ENROLLED"
	CourseCompleted = "COURSE_COMPLETED"
)

// Event is the wire envelope. Payload is event-specific.
type Event struct {
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload"`
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// KafkaPublisher writes events as JSON messages, keyed by the event name so
// consumers of one event type stay ordered per partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher returns a publisher over the given brokers.
func NewKafkaPublisher(brokers []string, clientID string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Transport: &kafka.Transport{
				ClientID: clientID,
			},
		},
	}
}

// Publish sends one event to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Name, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.Name),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Name, topic, err)
	}
	return nil
}

// Close flushes and releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards every event. Handy for tests and the local example.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
