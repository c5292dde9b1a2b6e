package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// TopicFoodcostRecalculate carries RecalculationRequested payloads emitted
// after successful sales ingestion.
const TopicFoodcostRecalculate = "foodcost.recalculate"

// RecalculationRequested asks for the daily food-cost figures of one
// restaurant to be rebuilt. Delivery is best effort.
type RecalculationRequested struct {
	RestaurantID uint   `json:"restaurant_id"`
	Date         string `json:"date"` // bill close date, "2006-01-02"
}

type Publisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	return p.conn.Publish(topic, msg)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NoopPublisher is used when no NATS url is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, msg []byte) error { return nil }

type HandlerFunc func(ctx context.Context, msg []byte) error

type NATSSubscriber struct {
	conn *nats.Conn
}

func NewNATSSubscriber(url string) (*NATSSubscriber, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSubscriber{conn: conn}, nil
}

func (s *NATSSubscriber) Subscribe(ctx context.Context, topic string, handler HandlerFunc) error {
	_, err := s.conn.Subscribe(topic, func(msg *nats.Msg) {
		_ = handler(ctx, msg.Data)
	})
	return err
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
