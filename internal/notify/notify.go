package notify

import (
	"context"
	"fmt"

	"deskly/internal/bookings/events"
	"deskly/pkg/kafka"
	"deskly/pkg/logger"
)

// Notifier delivers one notification to a customer. Delivery channels
// (email, SMS) plug in behind this interface; LogNotifier is the default.
type Notifier interface {
	Notify(ctx context.Context, customerID string, subject string, body string) error
}

// LogNotifier writes notifications to the structured log. It stands in
// for a real delivery channel in development and tests.
type LogNotifier struct {
	Log *logger.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, customerID string, subject string, body string) error {
	n.Log.Info("notification dispatched",
		"customer_id", customerID,
		"subject", subject,
		"body", body,
	)
	return nil
}

// Service turns booking events into customer notifications.
type Service struct {
	notifier Notifier
	log      *logger.Logger
}

func NewService(notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		notifier: notifier,
		log:      log,
	}
}

// HandleMessage is the kafka.MessageHandler for the booking events topic.
func (s *Service) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	switch msg.GetEventType() {
	case events.EventBookingCreated:
		return s.handleCreated(ctx, &event)
	case events.EventBookingCancelled:
		return s.handleCancelled(ctx, &event)
	default:
		s.log.Warn("skipping booking event with unknown type",
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
		)
		return nil
	}
}

func (s *Service) handleCreated(ctx context.Context, event *events.BookingEvent) error {
	subject := "Booking confirmed"
	body := fmt.Sprintf("Your booking %s for workspace %s from %s to %s is confirmed. Total: %.2f",
		event.BookingID,
		event.WorkspaceID,
		event.StartTime.Format("2006-01-02 15:04"),
		event.EndTime.Format("2006-01-02 15:04"),
		event.TotalPrice,
	)
	return s.notifier.Notify(ctx, event.CustomerID, subject, body)
}

func (s *Service) handleCancelled(ctx context.Context, event *events.BookingEvent) error {
	subject := "Booking cancelled"
	body := fmt.Sprintf("Your booking %s for workspace %s starting %s has been cancelled.",
		event.BookingID,
		event.WorkspaceID,
		event.StartTime.Format("2006-01-02 15:04"),
	)
	return s.notifier.Notify(ctx, event.CustomerID, subject, body)
}
