package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/navidrop/taxi-site/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	// A booking request reached the notification endpoint.
	BookingReceived = "booking.received"

	// The notification emails for a booking were sent.
	BookingNotified = "booking.notified"
)

// Event payloads
type BookingReceivedEvent struct {
	Pickup        string    `json:"pickup"`
	Dropoff       string    `json:"dropoff"`
	Date          string    `json:"date"`
	TripType      string    `json:"trip_type"`
	VehicleType   string    `json:"vehicle_type"`
	CustomerName  string    `json:"customer_name"`
	Mobile        string    `json:"mobile"`
	EstimatedFare string    `json:"estimated_fare"`
	ReceivedAt    time.Time `json:"received_at"`
}

type BookingNotifiedEvent struct {
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	OwnerEmail    string    `json:"owner_email"`
	NotifiedAt    time.Time `json:"notified_at"`
}
