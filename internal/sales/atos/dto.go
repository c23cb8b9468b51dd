package atos

import (
	"github.com/google/uuid"
)

type CreateATORequest struct {
	ContractID uuid.UUID `json:"contract_id" validate:"required"`
	Title      string    `json:"title" validate:"required"`
	Notes      *string   `json:"notes,omitempty"`
}

type AddConfigurationRequest struct {
	ItemType    ItemType       `json:"item_type" validate:"required"`
	ItemID      uuid.UUID      `json:"item_id" validate:"required"`
	DiscountPct float64        `json:"discount_percentage" validate:"gte=0,lte=100"`
	Details     map[string]any `json:"details,omitempty"`
	// Overrides for item types that have no catalog entry.
	Name               string   `json:"name,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	DeliveryImpactDays *int     `json:"delivery_impact_days,omitempty"`
}

type ConflictCheckRequest struct {
	MemorialItemID   uuid.UUID `json:"memorial_item_id" validate:"required"`
	CurrentUpgradeID uuid.UUID `json:"current_upgrade_id"`
}
