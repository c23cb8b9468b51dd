package customizations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/sales/approvals"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
)

const (
	defaultEngineeringRate = 150.0
	defaultContingencyPct  = 10.0
)

// ApprovalCreator files approval requests. Satisfied by approvals.Service.
type ApprovalCreator interface {
	Create(ctx context.Context, req approvals.CreateApprovalRequest, requestedBy int64) (*approvals.Approval, error)
}

// CustomizationLimiter yields the customization discount thresholds.
// Satisfied by limits.Cache.
type CustomizationLimiter interface {
	CustomizationLimits(ctx context.Context) policy.Limits
}

// Notifier tells the next assignee their step is waiting. Nil means no
// notifications are sent.
type Notifier interface {
	EnqueueWorkflowNotification(ctx context.Context, userID int64, customizationID uuid.UUID, step StepType) error
}

type Service struct {
	repo       Repository
	quotations quotations.Repository
	approvals  ApprovalCreator
	limits     policy.LimitsProvider
	custLimits CustomizationLimiter
	notifier   Notifier
}

func NewService(repo Repository, qrepo quotations.Repository, approvalSvc ApprovalCreator, limits policy.LimitsProvider, custLimits CustomizationLimiter, notifier Notifier) *Service {
	return &Service{
		repo:       repo,
		quotations: qrepo,
		approvals:  approvalSvc,
		limits:     limits,
		custLimits: custLimits,
		notifier:   notifier,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customization, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Customization, error) {
	return s.repo.ListByQuotation(ctx, quotationID)
}

func (s *Service) Steps(ctx context.Context, customizationID uuid.UUID) ([]WorkflowStep, error) {
	return s.repo.ListSteps(ctx, customizationID)
}

// Create opens a customization and queues the PM scoping step.
func (s *Service) Create(ctx context.Context, req CreateCustomizationRequest, createdBy int64) (*Customization, error) {
	if _, err := s.quotations.Get(ctx, req.QuotationID); err != nil {
		return nil, err
	}
	c := Customization{
		ID:          uuid.New(),
		QuotationID: req.QuotationID,
		Name:        req.Name,
		Description: req.Description,
		Status:      StatusPending,
		Workflow:    WorkflowPendingPMInitial,
		CreatedBy:   createdBy,
	}
	assignee, err := s.repo.FirstUserWithRole(ctx, "pm_engenharia")
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
		return repo.CreateStep(ctx, WorkflowStep{
			ID:              uuid.New(),
			CustomizationID: c.ID,
			StepType:        StepPMInitial,
			Status:          StepStatusPending,
			AssignedTo:      assignee,
		})
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, assignee, c.ID, StepPMInitial)
	return &c, nil
}

// Advance moves a customization one step through the review chain, or
// rejects it.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, req AdvanceRequest, userID int64) (*AdvanceResult, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expected, ok := stepFor[c.Workflow]
	if !ok {
		return nil, fmt.Errorf("%w: customization is %s", httpx.ErrInvalidStatus, c.Workflow)
	}
	if expected != req.Step {
		return nil, fmt.Errorf("%w: expected step %s, got %s", httpx.ErrInvalidStatus, expected, req.Step)
	}

	if req.Action == ActionReject {
		return s.reject(ctx, c, req.Data, userID)
	}

	switch req.Step {
	case StepPMInitial:
		return s.advancePMInitial(ctx, c, req.Data)
	case StepSupplyQuote:
		return s.advanceSupplyQuote(ctx, c, req.Data)
	case StepPlanningCheck:
		return s.advancePlanningCheck(ctx, c, req.Data)
	case StepPMFinal:
		return s.approvePMFinal(ctx, c, req.Data, userID)
	}
	return nil, fmt.Errorf("unknown workflow step %q", req.Step)
}

func (s *Service) reject(ctx context.Context, c *Customization, data StepData, userID int64) (*AdvanceResult, error) {
	if data.RejectReason == nil || *data.RejectReason == "" {
		return nil, fmt.Errorf("%w: motivo da rejeição é obrigatório", httpx.ErrValidation)
	}
	now := time.Now()
	c.Status = StatusRejected
	c.Workflow = WorkflowRejected
	c.RejectReason = data.RejectReason
	c.ReviewedBy = &userID
	c.ReviewedAt = &now

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, *c); err != nil {
			return err
		}
		return repo.MarkPendingStepsRejected(ctx, c.ID)
	})
	if err != nil {
		return nil, err
	}
	return &AdvanceResult{Status: WorkflowRejected, Message: "Customização rejeitada."}, nil
}

func (s *Service) advancePMInitial(ctx context.Context, c *Customization, data StepData) (*AdvanceResult, error) {
	if data.PMScope == nil || *data.PMScope == "" || data.EngineeringHours == nil || *data.EngineeringHours < 0 {
		return nil, fmt.Errorf("%w: escopo e horas de engenharia são obrigatórios", httpx.ErrValidation)
	}
	c.Workflow = WorkflowPendingSupplyQuote
	c.PMScope = data.PMScope
	c.EngineeringHours = *data.EngineeringHours
	c.RequiredParts = data.RequiredParts

	response := map[string]any{"pm_scope": *data.PMScope, "engineering_hours": *data.EngineeringHours}
	if err := s.completeAndQueue(ctx, c, StepPMInitial, response, StepSupplyQuote, "comprador"); err != nil {
		return nil, err
	}
	return &AdvanceResult{Status: c.Workflow, Message: "Workflow avançado com sucesso."}, nil
}

func (s *Service) advanceSupplyQuote(ctx context.Context, c *Customization, data StepData) (*AdvanceResult, error) {
	if len(data.SupplyItems) == 0 || data.SupplyCost == nil || *data.SupplyCost < 0 {
		return nil, fmt.Errorf("%w: itens cotados são obrigatórios", httpx.ErrValidation)
	}
	c.Workflow = WorkflowPendingPlanning
	c.SupplyItems = data.SupplyItems
	c.SupplyCost = *data.SupplyCost
	if data.SupplyLeadTimeDays != nil {
		c.SupplyLeadTimeDays = *data.SupplyLeadTimeDays
	}
	c.SupplyNotes = data.SupplyNotes

	response := map[string]any{"supply_cost": *data.SupplyCost, "items": len(data.SupplyItems)}
	if err := s.completeAndQueue(ctx, c, StepSupplyQuote, response, StepPlanningCheck, "planejador"); err != nil {
		return nil, err
	}
	return &AdvanceResult{Status: c.Workflow, Message: "Workflow avançado com sucesso."}, nil
}

func (s *Service) advancePlanningCheck(ctx context.Context, c *Customization, data StepData) (*AdvanceResult, error) {
	if data.PlanningDeliveryImpactDays == nil || *data.PlanningDeliveryImpactDays < 0 {
		return nil, fmt.Errorf("%w: impacto no prazo inválido", httpx.ErrValidation)
	}
	c.Workflow = WorkflowPendingPMFinal
	c.PlanningWindowStart = data.PlanningWindowStart
	c.PlanningDeliveryImpactDays = *data.PlanningDeliveryImpactDays
	c.PlanningNotes = data.PlanningNotes

	response := map[string]any{"planning_delivery_impact_days": *data.PlanningDeliveryImpactDays}
	if err := s.completeAndQueue(ctx, c, StepPlanningCheck, response, StepPMFinal, "pm_engenharia"); err != nil {
		return nil, err
	}
	return &AdvanceResult{Status: c.Workflow, Message: "Workflow avançado com sucesso."}, nil
}

// approvePMFinal closes the chain: it prices the customization, folds it
// into the quotation totals and files whatever approvals the new numbers
// require.
func (s *Service) approvePMFinal(ctx context.Context, c *Customization, data StepData, userID int64) (*AdvanceResult, error) {
	if data.PMFinalPrice == nil || *data.PMFinalPrice <= 0 {
		return nil, fmt.Errorf("%w: preço de venda é obrigatório", httpx.ErrValidation)
	}
	impactDays := 0
	if data.PMFinalDeliveryImpactDays != nil {
		impactDays = *data.PMFinalDeliveryImpactDays
	}

	rate, contingency := s.workflowConfig(ctx)
	now := time.Now()
	c.Workflow = WorkflowApproved
	c.Status = StatusApproved
	c.PMFinalPrice = *data.PMFinalPrice
	c.PMFinalDeliveryImpactDays = impactDays
	c.PMFinalNotes = data.PMFinalNotes
	c.TechnicalCost = ComputeTechnicalCost(c.EngineeringHours, c.SupplyCost, rate, contingency)
	c.AdditionalCost = *data.PMFinalPrice
	c.DeliveryImpactDays = impactDays
	c.ReviewedBy = &userID
	c.ReviewedAt = &now

	q, err := s.quotations.Get(ctx, c.QuotationID)
	if err != nil {
		return nil, err
	}

	response := map[string]any{"pm_final_price": c.PMFinalPrice, "delivery_impact_days": impactDays}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, *c); err != nil {
			return err
		}
		if err := repo.CompleteStep(ctx, c.ID, StepPMFinal, response); err != nil {
			return err
		}
		return s.refreshQuotationTotals(ctx, repo, q)
	})
	if err != nil {
		return nil, err
	}

	result := &AdvanceResult{Status: WorkflowApproved, Message: "Customização aprovada com sucesso."}

	custLimits := s.custLimits.CustomizationLimits(ctx)
	if c.PMFinalPrice > custLimits.AdminApprovalAbove {
		_, err := s.approvals.Create(ctx, approvals.CreateApprovalRequest{
			QuotationID: c.QuotationID,
			Type:        approvals.TypeCustomization,
			RequestDetails: map[string]any{
				"customization_id": c.ID.String(),
				"pm_final_price":   c.PMFinalPrice,
				"reason":           "Customização acima do limite de aprovação",
			},
		}, userID)
		if err != nil {
			return nil, fmt.Errorf("file customization approval: %w", err)
		}
		result.Message = "Customização aprovada. Aprovação de customização criada automaticamente."
		return result, nil
	}

	maxDiscount := q.BaseDiscountPct
	if q.OptionsDiscountPct > maxDiscount {
		maxDiscount = q.OptionsDiscountPct
	}
	if maxDiscount > s.limits.Current().Base.NoApprovalMax {
		_, err := s.approvals.Create(ctx, approvals.CreateApprovalRequest{
			QuotationID: c.QuotationID,
			Type:        approvals.TypeCommercial,
			RequestDetails: map[string]any{
				"discount_type":           "combined",
				"reason":                  "Gerado automaticamente após aprovação de customização",
				"customization_triggered": true,
			},
		}, userID)
		if err != nil {
			return nil, fmt.Errorf("file commercial approval: %w", err)
		}
		result.NeedsCommercialApproval = true
		result.Message = "Customização aprovada. Aprovação comercial criada automaticamente."
		return result, nil
	}

	if err := s.quotations.UpdateStatus(ctx, c.QuotationID, quotations.StatusReadyToSend); err != nil {
		return nil, err
	}
	return result, nil
}

// refreshQuotationTotals folds every active customization back into the
// quotation price and delivery date.
func (s *Service) refreshQuotationTotals(ctx context.Context, repo Repository, q *quotations.Quotation) error {
	active, err := repo.ListActiveByQuotation(ctx, q.ID)
	if err != nil {
		return err
	}
	var custTotal float64
	maxImpact := 0
	for _, c := range active {
		custTotal += c.AdditionalCost
		if c.DeliveryImpactDays > maxImpact {
			maxImpact = c.DeliveryImpactDays
		}
	}
	discountedBase := q.BasePrice * (1 - q.BaseDiscountPct/100)
	discountedOptions := (q.OptionsTotal + q.UpgradesTotal) * (1 - q.OptionsDiscountPct/100)
	finalPrice := discountedBase + discountedOptions + custTotal
	return s.quotations.UpdateTotals(ctx, q.ID, custTotal, finalPrice, q.BaseDeliveryDays+maxImpact)
}

// completeAndQueue closes the current step and opens the next one for the
// first user holding the given role.
func (s *Service) completeAndQueue(ctx context.Context, c *Customization, current StepType, response map[string]any, next StepType, role string) error {
	assignee, err := s.repo.FirstUserWithRole(ctx, role)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, *c); err != nil {
			return err
		}
		if err := repo.CompleteStep(ctx, c.ID, current, response); err != nil {
			return err
		}
		return repo.CreateStep(ctx, WorkflowStep{
			ID:              uuid.New(),
			CustomizationID: c.ID,
			StepType:        next,
			Status:          StepStatusPending,
			AssignedTo:      assignee,
		})
	})
	if err != nil {
		return err
	}
	s.notify(ctx, assignee, c.ID, next)
	return nil
}

func (s *Service) workflowConfig(ctx context.Context) (rate, contingency float64) {
	rate, contingency = defaultEngineeringRate, defaultContingencyPct
	if cfg, err := s.repo.ConfigValue(ctx, "engineering_rate"); err == nil && cfg != nil {
		if v, ok := cfg["rate_per_hour"].(float64); ok && v > 0 {
			rate = v
		}
	}
	if cfg, err := s.repo.ConfigValue(ctx, "contingency_percent"); err == nil && cfg != nil {
		if v, ok := cfg["percent"].(float64); ok && v >= 0 {
			contingency = v
		}
	}
	return rate, contingency
}

func (s *Service) notify(ctx context.Context, assignee *int64, customizationID uuid.UUID, step StepType) {
	if s.notifier == nil || assignee == nil {
		return
	}
	// Notification failures never block the workflow.
	_ = s.notifier.EnqueueWorkflowNotification(ctx, *assignee, customizationID, step)
}
