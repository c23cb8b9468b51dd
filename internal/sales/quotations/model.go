package quotations

import (
	"time"

	"github.com/google/uuid"
)

type QuotationStatus string

const (
	StatusDraft                     QuotationStatus = "draft"
	StatusPendingApproval           QuotationStatus = "pending_approval"
	StatusPendingCommercialApproval QuotationStatus = "pending_commercial_approval"
	StatusPendingTechnicalApproval  QuotationStatus = "pending_technical_approval"
	StatusReadyToSend               QuotationStatus = "ready_to_send"
	StatusSent                      QuotationStatus = "sent"
	StatusAccepted                  QuotationStatus = "accepted"
	StatusRejected                  QuotationStatus = "rejected"
	StatusConverted                 QuotationStatus = "converted"
)

// PendingApproval reports whether the status belongs to an approval workflow.
func (s QuotationStatus) PendingApproval() bool {
	switch s {
	case StatusPendingApproval, StatusPendingCommercialApproval, StatusPendingTechnicalApproval:
		return true
	}
	return false
}

// OptionSelection is an option chosen on a quotation.
type OptionSelection struct {
	OptionID     uuid.UUID `json:"option_id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	DeliveryDays int       `json:"delivery_days"`
}

// UpgradeSelection is a memorial upgrade chosen on a quotation.
type UpgradeSelection struct {
	UpgradeID      uuid.UUID `json:"upgrade_id"`
	MemorialItemID uuid.UUID `json:"memorial_item_id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	DeliveryDays   int       `json:"delivery_days"`
}

// Quotation is a priced yacht configuration offered to a client.
type Quotation struct {
	ID                  uuid.UUID          `json:"id"`
	Number              string             `json:"number"`
	ModelID             uuid.UUID          `json:"model_id"`
	ClientName          string             `json:"client_name"`
	ClientEmail         string             `json:"client_email"`
	ClientPhone         string             `json:"client_phone"`
	BasePrice           float64            `json:"base_price"`
	OptionsTotal        float64            `json:"options_total"`
	UpgradesTotal       float64            `json:"upgrades_total"`
	CustomizationsTotal float64            `json:"customizations_total"`
	BaseDiscountPct     float64            `json:"base_discount_percentage"`
	OptionsDiscountPct  float64            `json:"options_discount_percentage"`
	FinalPrice          float64            `json:"final_price"`
	BaseDeliveryDays    int                `json:"base_delivery_days"`
	TotalDeliveryDays   int                `json:"total_delivery_days"`
	Status              QuotationStatus    `json:"status"`
	SelectedOptions     []OptionSelection  `json:"selected_options"`
	SelectedUpgrades    []UpgradeSelection `json:"selected_upgrades"`
	ValidUntil          *time.Time         `json:"valid_until,omitempty"`
	Notes               *string            `json:"notes,omitempty"`
	CreatedBy           int64              `json:"created_by"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Totals without any discount applied.
func (q *Quotation) GrossTotal() float64 {
	return q.BasePrice + q.OptionsTotal + q.UpgradesTotal + q.CustomizationsTotal
}
