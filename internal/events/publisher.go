// Package events publishes storefront order events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "order.placed"

// OrderPlaced is emitted once the remote shop accepted a purchase.
type OrderPlaced struct {
	OrderID  string          `json:"order_id"`
	Session  string          `json:"session"`
	Products []int64         `json:"products"`
	Student  bool            `json:"student"`
	Coupon   string          `json:"coupon,omitempty"`
	Name     string          `json:"name,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Response json.RawMessage `json:"response,omitempty"`
	PlacedAt time.Time       `json:"placed_at"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	logger *slog.Logger
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewKafkaPublisher(w MessageWriter, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

// New returns a Kafka publisher, or a no-op one when no brokers are set.
func New(topic string, brokers []string, logger *slog.Logger) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(NewKafkaWriter(topic, brokers...), logger)
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	if ev.OrderID == "" {
		ev.OrderID = uuid.NewString()
	}
	if ev.PlacedAt.IsZero() {
		ev.PlacedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", EventOrderPlaced, err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.Session), // keeps one shopper's orders in order
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", EventOrderPlaced, err)
	}

	p.logger.InfoContext(ctx, "order event published", "order_id", ev.OrderID, "items", len(ev.Products))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
func (NopPublisher) Close() error                                         { return nil }
