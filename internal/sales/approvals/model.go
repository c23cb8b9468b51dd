package approvals

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalType string

const (
	TypeDiscount      ApprovalType = "discount"
	TypeCustomization ApprovalType = "customization"
	TypeCommercial    ApprovalType = "commercial"
	TypeTechnical     ApprovalType = "technical"
)

func (t ApprovalType) Valid() bool {
	switch t {
	case TypeDiscount, TypeCustomization, TypeCommercial, TypeTechnical:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Approval is a request for sign-off on a quotation.
type Approval struct {
	ID             uuid.UUID      `json:"id"`
	QuotationID    uuid.UUID      `json:"quotation_id"`
	Type           ApprovalType   `json:"approval_type"`
	Status         ApprovalStatus `json:"status"`
	RequestedBy    int64          `json:"requested_by"`
	RequestedAt    time.Time      `json:"requested_at"`
	ReviewedBy     *int64         `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	RequestDetails map[string]any `json:"request_details,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	ReviewNotes    *string        `json:"review_notes,omitempty"`
}
