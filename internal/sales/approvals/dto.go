package approvals

import (
	"github.com/google/uuid"
)

type CreateApprovalRequest struct {
	QuotationID    uuid.UUID      `json:"quotation_id" validate:"required"`
	Type           ApprovalType   `json:"approval_type" validate:"required"`
	RequestDetails map[string]any `json:"request_details,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

type ReviewRequest struct {
	Action      ReviewAction `json:"action" validate:"required,oneof=approve reject"`
	ReviewNotes *string      `json:"review_notes,omitempty"`
}
