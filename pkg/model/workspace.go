package model

import "time"

// Workspace is a bookable unit of the coworking space. Active is a soft
// delete flag: deactivated workspaces keep their booking history but are
// excluded from listings and availability.
type Workspace struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description  string    `json:"description" bson:"description" validate:"omitempty,max=500"`
	Capacity     int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	PricePerHour float64   `json:"price_per_hour" bson:"price_per_hour" validate:"gte=0"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// WorkspaceUpdate carries a partial update; nil/zero fields are left
// untouched by the merge.
type WorkspaceUpdate struct {
	Name         string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Capacity     *int     `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
	PricePerHour *float64 `json:"price_per_hour,omitempty" validate:"omitempty,gte=0"`
}
