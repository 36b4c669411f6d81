package events

import (
	"context"
	"fmt"
	"time"

	"deskly/pkg/kafka"
	"deskly/pkg/logger"
	"deskly/pkg/model"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"

	sourceService = "deskly"
)

// BookingEvent is the payload shared by both booking event types.
type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	WorkspaceID string    `json:"workspace_id"`
	CustomerID  string    `json:"customer_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TotalPrice  float64   `json:"total_price"`
	CancelledBy string    `json:"cancelled_by,omitempty"`
}

// Publisher emits booking lifecycle events. Publishing is best effort
// from the caller's point of view; the booking is already committed.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingCancelled(ctx context.Context, booking *model.Booking, cancelledBy string) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	logger   *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		logger:   log,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, EventBookingCreated, booking, "")
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, booking *model.Booking, cancelledBy string) error {
	return p.publish(ctx, EventBookingCancelled, booking, cancelledBy)
}

// publish keys on workspace id so all events for one workspace land on
// the same partition in order.
func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking, cancelledBy string) error {
	payload := BookingEvent{
		BookingID:   booking.ID,
		WorkspaceID: booking.WorkspaceID,
		CustomerID:  booking.CustomerID,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		TotalPrice:  booking.TotalPrice,
		CancelledBy: cancelledBy,
	}

	msg := kafka.NewMessage().
		WithKey(booking.WorkspaceID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(sourceService).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.logger.Debug("published booking event",
		"event_type", eventType,
		"booking_id", booking.ID,
		"workspace_id", booking.WorkspaceID)
	return nil
}

// NopPublisher is wired when booking events are disabled.
type NopPublisher struct{}

func (NopPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (NopPublisher) BookingCancelled(ctx context.Context, booking *model.Booking, cancelledBy string) error {
	return nil
}
