package notify

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"deskly/internal/bookings/events"
	"deskly/pkg/kafka"
	"deskly/pkg/logger"
)

type recordingNotifier struct {
	customerIDs []string
	subjects    []string
	err         error
}

func (r *recordingNotifier) Notify(ctx context.Context, customerID string, subject string, body string) error {
	if r.err != nil {
		return r.err
	}
	r.customerIDs = append(r.customerIDs, customerID)
	r.subjects = append(r.subjects, subject)
	return nil
}

func eventMessage(t *testing.T, eventType string, event events.BookingEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return kafka.Message{
		Key:   event.WorkspaceID,
		Value: value,
		Headers: map[string]string{
			kafka.HeaderEventType: eventType,
		},
	}
}

func testEvent() events.BookingEvent {
	start := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	return events.BookingEvent{
		BookingID:   "507f1f77bcf86cd799439012",
		WorkspaceID: "507f1f77bcf86cd799439011",
		CustomerID:  "customer-1",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		TotalPrice:  25.00,
	}
}

func TestHandleMessage(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(notifier, logger.New(logger.Config{Output: io.Discard}))

	msg := eventMessage(t, events.EventBookingCreated, testEvent())
	if err := svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	msg = eventMessage(t, events.EventBookingCancelled, testEvent())
	if err := svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if len(notifier.customerIDs) != 2 {
		t.Fatalf("notifications = %d, want 2", len(notifier.customerIDs))
	}
	if notifier.subjects[0] != "Booking confirmed" || notifier.subjects[1] != "Booking cancelled" {
		t.Errorf("subjects = %v", notifier.subjects)
	}
}

func TestHandleMessageUnknownTypeIsSkipped(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(notifier, logger.New(logger.Config{Output: io.Discard}))

	msg := eventMessage(t, "booking.unknown", testEvent())
	if err := svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(notifier.customerIDs) != 0 {
		t.Errorf("unknown event type should not notify")
	}
}

func TestHandleMessageMalformedPayload(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(notifier, logger.New(logger.Config{Output: io.Discard}))

	msg := kafka.Message{
		Value:   []byte("{not json"),
		Headers: map[string]string{kafka.HeaderEventType: events.EventBookingCreated},
	}
	if err := svc.HandleMessage(context.Background(), msg); err == nil {
		t.Error("HandleMessage() should fail on malformed payload")
	}
}
