package model

import "time"

// DaySlot is the fixed-grid availability record used by the slot-counter
// engine variant: one document per workspace-hour, with Remaining bounded
// by [0, Capacity]. A workspace uses either interval bookings or day
// slots, never both.
type DaySlot struct {
	WorkspaceID string    `json:"workspace_id" bson:"workspace_id" validate:"required,mongodb"`
	Date        string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Hour        int       `json:"hour" bson:"hour" validate:"min=0,max=23"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1"`
	Remaining   int       `json:"remaining" bson:"remaining" validate:"min=0"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
