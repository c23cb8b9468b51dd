package hulls

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a hull number's allocation state.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusAssigned  Status = "assigned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusAssigned:
		return true
	}
	return false
}

// Hull is a production slot identified by a hull number.
type Hull struct {
	ID        uuid.UUID `json:"id"`
	ModelID   uuid.UUID `json:"model_id"`
	Number    string    `json:"number"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HullForm carries create/update payloads.
type HullForm struct {
	ModelID uuid.UUID `json:"model_id" validate:"required"`
	Number  string    `json:"number" validate:"required"`
	Status  Status    `json:"status" validate:"required"`
}
