// Package kafka publishes case observability events so downstream consumers
// can follow retention cases as agents complete. Publishing is best-effort:
// the pipeline never depends on it.
package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// CaseEvent describes one observable step of a retention case.
type CaseEvent struct {
	CaseID     string         `json:"case_id"`
	CustomerID int            `json:"customer_id,omitempty"`
	AgentType  string         `json:"agent_type"`
	EventType  string         `json:"event_type"`
	Success    bool           `json:"success"`
	Timestamp  time.Time      `json:"timestamp"`
	Details    map[string]any `json:"details,omitempty"`
}

// Event types.
const (
	EventAgentCompleted     = "agent_completed"
	EventResolutionProposed = "resolution_proposed"
	EventCaseSaved          = "case_saved"
)

// Producer sends case events to Kafka.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer for the case events topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// SendCaseEvent publishes one event keyed by case ID. A nil producer is a
// no-op so event publishing stays optional.
func (p *Producer) SendCaseEvent(ctx context.Context, event CaseEvent) error {
	if p == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.CaseID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	log.Printf("Sent case event to Kafka: %s %s/%s", event.CaseID, event.AgentType, event.EventType)
	return nil
}

// Close closes the Kafka writer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
