package options

import (
	"time"

	"github.com/google/uuid"
)

// Option is a configurable extra offered for a yacht model.
type Option struct {
	ID           uuid.UUID  `json:"id"`
	ModelID      *uuid.UUID `json:"model_id,omitempty"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Price        float64    `json:"price"`
	DeliveryDays int        `json:"delivery_days"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// OptionForm carries create/update payloads.
type OptionForm struct {
	ModelID      *uuid.UUID `json:"model_id"`
	Code         string     `json:"code" validate:"required"`
	Name         string     `json:"name" validate:"required"`
	Category     string     `json:"category"`
	Price        float64    `json:"price" validate:"gte=0"`
	DeliveryDays int        `json:"delivery_days" validate:"gte=0"`
	IsActive     bool       `json:"is_active"`
}
