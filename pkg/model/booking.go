package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking reserves a workspace for the half-open interval
// [StartTime, EndTime). Only confirmed bookings occupy the slot;
// cancellation is terminal and the record is never deleted.
type Booking struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	WorkspaceID string        `json:"workspace_id" bson:"workspace_id" validate:"required,mongodb"`
	CustomerID  string        `json:"customer_id" bson:"customer_id" validate:"required"`
	StartTime   time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status      BookingStatus `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	TotalPrice  float64       `json:"total_price" bson:"total_price" validate:"gte=0"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingRequest is the booking intent as it arrives from the request
// layer; the customer id comes from the external auth layer, not the body.
type BookingRequest struct {
	WorkspaceID string    `json:"workspace_id" validate:"required,mongodb"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}
