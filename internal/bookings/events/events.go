package events

import (
	"context"
	"time"

	"fleetbook/pkg/kafka"
	"fleetbook/pkg/model"
)

const (
	Topic    = "booking-events"
	DLQTopic = "booking-events-dlq"

	Source = "bookings-service"

	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is the payload shared by all booking lifecycle events.
// Downstream consumers (notifier, billing) key off the event-type header.
type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	UserID      string    `json:"user_id"`
	VehicleID   string    `json:"vehicle_id"`
	PlateNumber string    `json:"plate_number"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalPrice  float64   `json:"total_price"`
	Status      string    `json:"status"`
	PrevStatus  string    `json:"prev_status,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emits booking lifecycle events. Publishing is best effort: the
// booking is already durable by the time an event goes out, so callers log
// failures instead of rolling back.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingStatusChanged(ctx context.Context, booking *model.Booking, prevStatus string) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, TypeBookingCreated, booking, "")
}

func (p *kafkaPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, prevStatus string) error {
	return p.publish(ctx, TypeBookingStatusChanged, booking, prevStatus)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking, prevStatus string) error {
	payload := BookingEvent{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		VehicleID:   booking.VehicleID,
		PlateNumber: booking.PlateNumber,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalPrice:  booking.TotalPrice,
		Status:      booking.Status,
		PrevStatus:  prevStatus,
		OccurredAt:  time.Now().UTC(),
	}

	// Keyed by booking id so per-booking ordering survives partitioning.
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(Source).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops all events. Used when Kafka is disabled and in tests.
type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (NoopPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, prevStatus string) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
