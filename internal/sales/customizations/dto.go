package customizations

import (
	"time"

	"github.com/google/uuid"
)

type CreateCustomizationRequest struct {
	QuotationID uuid.UUID `json:"quotation_id" validate:"required"`
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"max=2000"`
}

type AdvanceAction string

const (
	ActionAdvance AdvanceAction = "advance"
	ActionReject  AdvanceAction = "reject"
)

// StepData carries the payload of whichever step is being completed.
type StepData struct {
	PMScope          *string  `json:"pm_scope,omitempty"`
	EngineeringHours *float64 `json:"engineering_hours,omitempty"`
	RequiredParts    []string `json:"required_parts,omitempty"`

	SupplyItems        []SupplyItem `json:"supply_items,omitempty"`
	SupplyCost         *float64     `json:"supply_cost,omitempty"`
	SupplyLeadTimeDays *int         `json:"supply_lead_time_days,omitempty"`
	SupplyNotes        *string      `json:"supply_notes,omitempty"`

	PlanningWindowStart        *time.Time `json:"planning_window_start,omitempty"`
	PlanningDeliveryImpactDays *int       `json:"planning_delivery_impact_days,omitempty"`
	PlanningNotes              *string    `json:"planning_notes,omitempty"`

	PMFinalPrice              *float64 `json:"pm_final_price,omitempty"`
	PMFinalDeliveryImpactDays *int     `json:"pm_final_delivery_impact_days,omitempty"`
	PMFinalNotes              *string  `json:"pm_final_notes,omitempty"`

	RejectReason *string `json:"reject_reason,omitempty"`
}

type AdvanceRequest struct {
	Step   StepType      `json:"current_step" validate:"required,oneof=pm_initial supply_quote planning_check pm_final"`
	Action AdvanceAction `json:"action" validate:"required,oneof=advance reject"`
	Data   StepData      `json:"data"`
}

// AdvanceResult reports where the workflow landed after a step.
type AdvanceResult struct {
	Status                  WorkflowStatus `json:"status"`
	NeedsCommercialApproval bool           `json:"needs_commercial_approval,omitempty"`
	Message                 string         `json:"message"`
}
