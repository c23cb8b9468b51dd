package customizations

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// WorkflowStatus tracks where a customization sits in the review chain.
type WorkflowStatus string

const (
	WorkflowPendingPMInitial    WorkflowStatus = "pending_pm_initial"
	WorkflowPendingSupplyQuote  WorkflowStatus = "pending_supply_quote"
	WorkflowPendingPlanning     WorkflowStatus = "pending_planning_validation"
	WorkflowPendingPMFinal      WorkflowStatus = "pending_pm_final_approval"
	WorkflowApproved            WorkflowStatus = "approved"
	WorkflowRejected            WorkflowStatus = "rejected"
)

type StepType string

const (
	StepPMInitial     StepType = "pm_initial"
	StepSupplyQuote   StepType = "supply_quote"
	StepPlanningCheck StepType = "planning_check"
	StepPMFinal       StepType = "pm_final"
)

type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	StepStatusRejected  StepStatus = "rejected"
)

// SupplyItem is one quoted part on the supply step.
type SupplyItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}

// Customization is a client-requested change that is priced through a
// four-step review chain before it lands on the quotation.
type Customization struct {
	ID          uuid.UUID      `json:"id"`
	QuotationID uuid.UUID      `json:"quotation_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Workflow    WorkflowStatus `json:"workflow_status"`

	PMScope          *string  `json:"pm_scope,omitempty"`
	EngineeringHours float64  `json:"engineering_hours"`
	RequiredParts    []string `json:"required_parts,omitempty"`

	SupplyItems        []SupplyItem `json:"supply_items,omitempty"`
	SupplyCost         float64      `json:"supply_cost"`
	SupplyLeadTimeDays int          `json:"supply_lead_time_days"`
	SupplyNotes        *string      `json:"supply_notes,omitempty"`

	PlanningWindowStart        *time.Time `json:"planning_window_start,omitempty"`
	PlanningDeliveryImpactDays int        `json:"planning_delivery_impact_days"`
	PlanningNotes              *string    `json:"planning_notes,omitempty"`

	PMFinalPrice              float64 `json:"pm_final_price"`
	PMFinalDeliveryImpactDays int     `json:"pm_final_delivery_impact_days"`
	PMFinalNotes              *string `json:"pm_final_notes,omitempty"`
	TechnicalCost             float64 `json:"technical_cost"`

	AdditionalCost     float64 `json:"additional_cost"`
	DeliveryImpactDays int     `json:"delivery_impact_days"`

	RejectReason *string    `json:"reject_reason,omitempty"`
	ReviewedBy   *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkflowStep is one assignment record in the review chain.
type WorkflowStep struct {
	ID              uuid.UUID      `json:"id"`
	CustomizationID uuid.UUID      `json:"customization_id"`
	StepType        StepType       `json:"step_type"`
	Status          StepStatus     `json:"status"`
	AssignedTo      *int64         `json:"assigned_to,omitempty"`
	ResponseData    map[string]any `json:"response_data,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// stepFor maps a workflow status to the step expected to act on it.
var stepFor = map[WorkflowStatus]StepType{
	WorkflowPendingPMInitial:   StepPMInitial,
	WorkflowPendingSupplyQuote: StepSupplyQuote,
	WorkflowPendingPlanning:    StepPlanningCheck,
	WorkflowPendingPMFinal:     StepPMFinal,
}

// ComputeTechnicalCost prices the internal effort of a customization:
// supply cost plus engineering hours at the configured rate, marked up by
// the contingency percentage.
func ComputeTechnicalCost(engineeringHours, supplyCost, ratePerHour, contingencyPct float64) float64 {
	engineering := engineeringHours * ratePerHour
	return (supplyCost + engineering) * (1 + contingencyPct/100)
}
