package contracts

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusDelivered ContractStatus = "delivered"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// SelectedOption is an option captured into the contract snapshot.
type SelectedOption struct {
	OptionID     uuid.UUID `json:"option_id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	DeliveryDays int       `json:"delivery_days"`
}

// SelectedUpgrade is an upgrade captured into the contract snapshot. The
// memorial item reference is what later lets an ATO detect a replacement.
type SelectedUpgrade struct {
	UpgradeID      uuid.UUID `json:"upgrade_id"`
	MemorialItemID uuid.UUID `json:"memorial_item_id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	DeliveryDays   int       `json:"delivery_days"`
}

// CustomizationEntry is an approved customization captured into the snapshot.
type CustomizationEntry struct {
	CustomizationID uuid.UUID `json:"customization_id"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	ImpactDays      int       `json:"impact_days"`
}

// BaseSnapshot is the immutable configuration a contract was signed with.
// It is written once at contract creation; every later change goes through
// an ATO.
type BaseSnapshot struct {
	BasePrice        float64              `json:"base_price"`
	BaseDeliveryDays int                  `json:"base_delivery_days"`
	SelectedOptions  []SelectedOption     `json:"selected_options"`
	SelectedUpgrades []SelectedUpgrade    `json:"selected_upgrades"`
	Customizations   []CustomizationEntry `json:"customizations"`
}

// Validate checks the snapshot shape before it crosses the storage boundary.
func (s BaseSnapshot) Validate() error {
	if s.BasePrice < 0 {
		return errors.New("base_price must not be negative")
	}
	if s.BaseDeliveryDays < 0 {
		return errors.New("base_delivery_days must not be negative")
	}
	for i, o := range s.SelectedOptions {
		if o.OptionID == uuid.Nil {
			return fmt.Errorf("selected_options[%d]: option_id required", i)
		}
		if o.Price < 0 {
			return fmt.Errorf("selected_options[%d]: price must not be negative", i)
		}
	}
	for i, u := range s.SelectedUpgrades {
		if u.UpgradeID == uuid.Nil {
			return fmt.Errorf("selected_upgrades[%d]: upgrade_id required", i)
		}
		if u.MemorialItemID == uuid.Nil {
			return fmt.Errorf("selected_upgrades[%d]: memorial_item_id required", i)
		}
		if u.Price < 0 {
			return fmt.Errorf("selected_upgrades[%d]: price must not be negative", i)
		}
	}
	for i, c := range s.Customizations {
		if c.CustomizationID == uuid.Nil {
			return fmt.Errorf("customizations[%d]: customization_id required", i)
		}
	}
	return nil
}

// UpgradeByMemorialItem returns the snapshot upgrade occupying the given
// memorial item slot, if any.
func (s BaseSnapshot) UpgradeByMemorialItem(memorialItemID uuid.UUID) (SelectedUpgrade, bool) {
	for _, u := range s.SelectedUpgrades {
		if u.MemorialItemID == memorialItemID {
			return u, true
		}
	}
	return SelectedUpgrade{}, false
}

// Contract represents a signed sale.
type Contract struct {
	ID           uuid.UUID      `json:"id"`
	Number       string         `json:"number"`
	QuotationID  uuid.UUID      `json:"quotation_id"`
	ModelID      uuid.UUID      `json:"model_id"`
	ClientName   string         `json:"client_name"`
	ClientEmail  string         `json:"client_email"`
	HullID       *uuid.UUID     `json:"hull_id,omitempty"`
	HullNumber   string         `json:"hull_number"`
	Status       ContractStatus `json:"status"`
	FinalPrice   float64        `json:"final_price"`
	DeliveryDays int            `json:"delivery_days"`
	BaseSnapshot BaseSnapshot   `json:"base_snapshot"`
	SignedAt     *time.Time     `json:"signed_at,omitempty"`
	CreatedBy    int64          `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
