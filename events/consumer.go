package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/IBM/sarama"
)

// RunRequest asks the service to start a pipeline run
type RunRequest struct {
	Topic string `json:"topic"`
	Test  bool   `json:"test"`
}

// MessageHandler processes one consumed message and reports whether its
// offset should be committed. Unmarked messages are redelivered.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// Consumer reads messages from a topic as part of a consumer group
type Consumer struct {
	consumer sarama.ConsumerGroup
	handler  MessageHandler
	topic    string
	groupID  string
	ready    chan bool
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	client, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		consumer: client,
		handler:  config.Handler,
		topic:    config.Topic,
		groupID:  config.GroupID,
		ready:    make(chan bool),
	}, nil
}

// Start joins the group in the background and returns once the first
// session is set up
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{
		messageHandler: c.handler,
		ready:          c.ready,
	}

	go func() {
		for {
			if err := c.consumer.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, sarama.ErrClosedConsumerGroup) {
					log.Println("Kafka consumer stopped")
					return
				}
				log.Printf("Error from Kafka consumer: %v", err)
			}

			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	select {
	case <-c.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("✅ Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.consumer.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	return nil
}

// Close leaves the group
func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.consumer.Close()
}

type groupHandler struct {
	messageHandler MessageHandler
	ready          chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			log.Printf("📥 Received Kafka message: partition=%d, offset=%d, key=%s",
				message.Partition, message.Offset, string(message.Key))

			shouldMark, err := h.messageHandler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				log.Printf("❌ Failed to handle message: %v", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedHandler decodes JSON messages into T before processing them
type TypedHandler[T any] struct {
	Validate func(msg *T) bool
	Process  func(ctx context.Context, msg *T) error
	// AlwaysMark commits messages that fail to decode or validate
	AlwaysMark bool
}

// HandleMessage implements MessageHandler
func (h *TypedHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("❌ Failed to unmarshal message: %v", err)
		return h.AlwaysMark, nil
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}

// RunRequests builds a handler that passes each request to start. Requests
// are committed even when start refuses them.
func RunRequests(start func(ctx context.Context, req RunRequest) error) *TypedHandler[RunRequest] {
	return &TypedHandler[RunRequest]{
		Validate: func(req *RunRequest) bool {
			req.Topic = strings.TrimSpace(req.Topic)
			return true
		},
		Process: func(ctx context.Context, req *RunRequest) error {
			if err := start(ctx, *req); err != nil {
				log.Printf("⚠️ Run request not started: %v", err)
			}
			return nil
		},
		AlwaysMark: true,
	}
}
