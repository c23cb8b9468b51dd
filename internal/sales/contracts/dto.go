package contracts

import (
	"time"

	"github.com/google/uuid"
)

// ConvertRequest creates a contract from an accepted quotation.
type ConvertRequest struct {
	QuotationID uuid.UUID  `json:"quotation_id" validate:"required"`
	HullID      *uuid.UUID `json:"hull_id,omitempty"`
	SignedAt    *time.Time `json:"signed_at,omitempty"`
}

// UpdateStatusRequest moves a contract through its lifecycle.
type UpdateStatusRequest struct {
	Status ContractStatus `json:"status" validate:"required,oneof=active delivered cancelled"`
}
