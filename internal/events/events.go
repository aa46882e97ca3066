package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const (
	TypeBookingConfirmed    = "booking.confirmed"
	TypeChargeVoidEscalated = "charge.void_escalated"

	TypeChargeCaptureEscalated = "charge.capture_escalated"

	Exchange = "cinex.booking.events"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

func New(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type BookingConfirmed struct {
	BookingID  int             `json:"bookingId"`
	ShowtimeID int             `json:"showtimeId"`
	UserID     int             `json:"userId"`
	Seats      []string        `json:"seats"`
	Total      decimal.Decimal `json:"total"`
	ChargeID   string          `json:"chargeId,omitempty"`
}

// ChargeVoidEscalated is raised when an authorized charge could not be voided
// and needs manual follow-up.
type ChargeVoidEscalated struct {
	PaymentID   int             `json:"paymentId"`
	ChargeID    string          `json:"chargeId"`
	ShowtimeID  int             `json:"showtimeId"`
	UserID      int             `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	HolderToken string          `json:"holderToken"`
	Reason      string          `json:"reason"`
}

// ChargeCaptureEscalated is raised when a booking was confirmed but its
// authorized charge could not be captured.
type ChargeCaptureEscalated struct {
	PaymentID  int             `json:"paymentId"`
	BookingID  int             `json:"bookingId"`
	ChargeID   string          `json:"chargeId"`
	ShowtimeID int             `json:"showtimeId"`
	UserID     int             `json:"userId"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RabbitPublisher sends events to a durable topic exchange, routed by event
// type.
type RabbitPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &RabbitPublisher{ch: ch, exchange: Exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg)
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
