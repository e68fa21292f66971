// Package events publishes pipeline run events to Kafka and consumes run
// requests.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Event statuses
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Event reports the progress of one pipeline step
type Event struct {
	RunID     string    `json:"run_id"`
	ProjectID string    `json:"project_id"`
	Step      string    `json:"step"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Time      time.Time `json:"time"`
}

// Publisher sends run events somewhere
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Producer publishes events to a Kafka topic keyed by run ID
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects a synchronous producer to brokers
func NewProducer(brokers []string, topic string) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewProducerWith(producer, topic), nil
}

// NewProducerWith wraps an existing sarama producer
func NewProducerWith(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: producer, topic: topic}
}

// Publish sends e and waits for the broker acknowledgement
func (p *Producer) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.RunID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", e.Step, err)
	}

	log.Printf("📤 Published %s/%s event: partition=%d, offset=%d", e.Step, e.Status, partition, offset)
	return nil
}

// Close flushes and shuts down the producer
func (p *Producer) Close() error {
	log.Println("Closing Kafka producer...")
	return p.producer.Close()
}
