package memorial

import (
	"time"

	"github.com/google/uuid"
)

// Item is an entry of a yacht model's construction memorial. Each item
// describes one standard-build slot that upgrades can replace.
type Item struct {
	ID        uuid.UUID  `json:"id"`
	ModelID   *uuid.UUID `json:"model_id,omitempty"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Section   string     `json:"section"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Upgrade replaces the standard build of one memorial item.
type Upgrade struct {
	ID             uuid.UUID `json:"id"`
	MemorialItemID uuid.UUID `json:"memorial_item_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	DeliveryDays   int       `json:"delivery_days"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ItemForm carries memorial item create/update payloads.
type ItemForm struct {
	ModelID  *uuid.UUID `json:"model_id"`
	Code     string     `json:"code" validate:"required"`
	Name     string     `json:"name" validate:"required"`
	Section  string     `json:"section"`
	IsActive bool       `json:"is_active"`
}

// UpgradeForm carries upgrade create/update payloads.
type UpgradeForm struct {
	MemorialItemID uuid.UUID `json:"memorial_item_id" validate:"required"`
	Code           string    `json:"code" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Price          float64   `json:"price" validate:"gte=0"`
	DeliveryDays   int       `json:"delivery_days" validate:"gte=0"`
	IsActive       bool      `json:"is_active"`
}
