package models

import (
	"time"

	"github.com/google/uuid"
)

// YachtModel represents a yacht model of the product line.
type YachtModel struct {
	ID               uuid.UUID `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	BasePrice        float64   `json:"base_price"`
	BaseDeliveryDays int       `json:"base_delivery_days"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
