package quotations

import (
	"time"

	"github.com/google/uuid"
)

type SelectionInput struct {
	OptionIDs  []uuid.UUID `json:"option_ids"`
	UpgradeIDs []uuid.UUID `json:"upgrade_ids"`
}

type CreateQuotationRequest struct {
	ModelID            uuid.UUID      `json:"model_id" validate:"required"`
	ClientName         string         `json:"client_name" validate:"required"`
	ClientEmail        string         `json:"client_email" validate:"omitempty,email"`
	ClientPhone        string         `json:"client_phone"`
	BaseDiscountPct    float64        `json:"base_discount_percentage" validate:"gte=0"`
	OptionsDiscountPct float64        `json:"options_discount_percentage" validate:"gte=0"`
	Selection          SelectionInput `json:"selection"`
	ValidUntil         *time.Time     `json:"valid_until,omitempty"`
	Notes              *string        `json:"notes,omitempty"`
}

type UpdateQuotationRequest struct {
	ClientName         *string         `json:"client_name,omitempty"`
	ClientEmail        *string         `json:"client_email,omitempty" validate:"omitempty,email"`
	ClientPhone        *string         `json:"client_phone,omitempty"`
	BaseDiscountPct    *float64        `json:"base_discount_percentage,omitempty"`
	OptionsDiscountPct *float64        `json:"options_discount_percentage,omitempty"`
	Selection          *SelectionInput `json:"selection,omitempty"`
	ValidUntil         *time.Time      `json:"valid_until,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
}

type ListQuotationsRequest struct {
	Status *QuotationStatus
	Search string
	Limit  int
	Offset int
}

// ApprovalState summarizes whether a quotation can be sent to the client.
type ApprovalState struct {
	RequiresApproval bool   `json:"requires_approval"`
	PendingCount     int    `json:"pending_count"`
	CanSend          bool   `json:"can_send"`
	NextStep         string `json:"next_step"`
	Message          string `json:"message,omitempty"`
}

const (
	NextStepAwaitingApprovals = "awaiting_approvals"
	NextStepReadyToSend       = "ready_to_send"
)
