package atos

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ATOStatus string

const (
	StatusDraft         ATOStatus = "draft"
	StatusPendingReview ATOStatus = "pending_review"
	StatusApproved      ATOStatus = "approved"
	StatusRejected      ATOStatus = "rejected"
	StatusSent          ATOStatus = "sent"
)

func (s ATOStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusSent:
		return true
	}
	return false
}

type ItemType string

const (
	ItemOption          ItemType = "option"
	ItemUpgrade         ItemType = "upgrade"
	ItemMemorialItem    ItemType = "memorial_item"
	ItemDefineFinishing ItemType = "define_finishing"
	ItemCustomization   ItemType = "customization"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemOption, ItemUpgrade, ItemMemorialItem, ItemDefineFinishing, ItemCustomization:
		return true
	}
	return false
}

// ATO is a post-contract change order ("Alteração Técnica e de Opcionais").
type ATO struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	Status     ATOStatus `json:"status"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DisplayNumber renders the number the way documents show it.
func (a ATO) DisplayNumber() string {
	return fmt.Sprintf("ATO %d", a.Number)
}

// Configuration is one line item of an ATO. The memorial item reference is a
// typed column so replacement detection never digs through display JSON.
type Configuration struct {
	ID                 uuid.UUID      `json:"id"`
	ATOID              uuid.UUID      `json:"ato_id"`
	ItemType           ItemType       `json:"item_type"`
	ItemID             uuid.UUID      `json:"item_id"`
	MemorialItemID     *uuid.UUID     `json:"memorial_item_id,omitempty"`
	Name               string         `json:"name"`
	OriginalPrice      float64        `json:"original_price"`
	CalculatedPrice    float64        `json:"calculated_price"`
	DiscountPct        float64        `json:"discount_percentage"`
	DeliveryImpactDays int            `json:"delivery_impact_days"`
	Details            map[string]any `json:"details,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}
