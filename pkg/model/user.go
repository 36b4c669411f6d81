package model

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User is the flat account entity; authorization dispatches on Role.
// Authentication happens upstream, the engine only consults the role for
// the admin-cancel capability.
type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone" bson:"phone" validate:"omitempty,e164"`
	Role      UserRole  `json:"role" bson:"role" validate:"required,oneof=customer admin"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
