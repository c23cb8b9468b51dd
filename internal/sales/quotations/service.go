package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/catalog/memorial"
	"github.com/okean-yachts/okean-cpq/internal/catalog/models"
	"github.com/okean-yachts/okean-cpq/internal/catalog/options"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
)

var (
	ErrInvalidStatus    = errors.New("invalid status transition")
	ErrApprovalRequired = errors.New("quotation has pending approvals")
	ErrDiscountInvalid  = errors.New("discount validation failed")
)

// ApprovalCounter reports pending approvals for a quotation. Implemented by
// the approvals repository; kept as an interface here to avoid a package
// cycle.
type ApprovalCounter interface {
	CountPending(ctx context.Context, quotationID uuid.UUID) (int, error)
}

// Dispatcher enqueues the follow-up work after a quotation is sent.
type Dispatcher interface {
	EnqueueQuotationSent(ctx context.Context, quotationID uuid.UUID) error
}

type Service struct {
	repo         Repository
	modelRepo    models.Repository
	optionRepo   options.Repository
	memorialRepo memorial.Repository
	engine       *policy.Engine
	approvals    ApprovalCounter
	dispatcher   Dispatcher
}

func NewService(repo Repository, modelRepo models.Repository, optionRepo options.Repository, memorialRepo memorial.Repository, engine *policy.Engine, approvals ApprovalCounter, dispatcher Dispatcher) *Service {
	return &Service{
		repo:         repo,
		modelRepo:    modelRepo,
		optionRepo:   optionRepo,
		memorialRepo: memorialRepo,
		engine:       engine,
		approvals:    approvals,
		dispatcher:   dispatcher,
	}
}

func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, createdBy int64, userRoles []policy.Role) (*Quotation, ValidationResult, error) {
	validation := ValidateDiscounts(s.engine, req.BaseDiscountPct, req.OptionsDiscountPct, userRoles)
	if !validation.Valid {
		return nil, validation, fmt.Errorf("%w: %v", ErrDiscountInvalid, validation.Errors)
	}

	model, err := s.modelRepo.Get(ctx, req.ModelID)
	if err != nil {
		return nil, validation, fmt.Errorf("resolve yacht model: %w", err)
	}

	selOptions, selUpgrades, err := s.resolveSelection(ctx, req.Selection)
	if err != nil {
		return nil, validation, err
	}

	now := time.Now()
	q := Quotation{
		ID:                 uuid.New(),
		ModelID:            model.ID,
		ClientName:         req.ClientName,
		ClientEmail:        req.ClientEmail,
		ClientPhone:        req.ClientPhone,
		BasePrice:          model.BasePrice,
		BaseDiscountPct:    req.BaseDiscountPct,
		OptionsDiscountPct: req.OptionsDiscountPct,
		BaseDeliveryDays:   model.BaseDeliveryDays,
		Status:             StatusDraft,
		SelectedOptions:    selOptions,
		SelectedUpgrades:   selUpgrades,
		ValidUntil:         req.ValidUntil,
		Notes:              req.Notes,
		CreatedBy:          createdBy,
		CreatedAt:          now,
	}
	recomputeTotals(&q)

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, now)
		if err != nil {
			return fmt.Errorf("generate quotation number: %w", err)
		}
		q.Number = number
		return repo.Create(ctx, q)
	})
	if err != nil {
		return nil, validation, err
	}
	out, err := s.repo.Get(ctx, q.ID)
	return out, validation, err
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateQuotationRequest, userRoles []policy.Role) (*Quotation, ValidationResult, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	if existing.Status != StatusDraft && existing.Status != StatusReadyToSend {
		return nil, ValidationResult{}, fmt.Errorf("%w: only draft or ready-to-send quotations can be edited", ErrInvalidStatus)
	}

	if req.ClientName != nil {
		existing.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		existing.ClientEmail = *req.ClientEmail
	}
	if req.ClientPhone != nil {
		existing.ClientPhone = *req.ClientPhone
	}
	if req.BaseDiscountPct != nil {
		existing.BaseDiscountPct = *req.BaseDiscountPct
	}
	if req.OptionsDiscountPct != nil {
		existing.OptionsDiscountPct = *req.OptionsDiscountPct
	}
	if req.ValidUntil != nil {
		existing.ValidUntil = req.ValidUntil
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}

	validation := ValidateDiscounts(s.engine, existing.BaseDiscountPct, existing.OptionsDiscountPct, userRoles)
	if !validation.Valid {
		return nil, validation, fmt.Errorf("%w: %v", ErrDiscountInvalid, validation.Errors)
	}

	if req.Selection != nil {
		selOptions, selUpgrades, err := s.resolveSelection(ctx, *req.Selection)
		if err != nil {
			return nil, validation, err
		}
		existing.SelectedOptions = selOptions
		existing.SelectedUpgrades = selUpgrades
	}

	// Any edit drops the quotation back to draft so the approval cycle
	// starts over with the new numbers.
	existing.Status = StatusDraft
	recomputeTotals(existing)

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, validation, err
	}
	out, err := s.repo.Get(ctx, id)
	return out, validation, err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	return s.repo.List(ctx, req)
}

// ApprovalState derives the sendability of a quotation from its status, its
// discounts, and the outstanding approval requests.
func (s *Service) ApprovalState(ctx context.Context, q *Quotation) (ApprovalState, error) {
	pending, err := s.approvals.CountPending(ctx, q.ID)
	if err != nil {
		return ApprovalState{}, fmt.Errorf("count pending approvals: %w", err)
	}

	state := ApprovalState{
		RequiresApproval: pending > 0 || q.Status.PendingApproval() ||
			s.engine.NeedsApproval(q.BaseDiscountPct, q.OptionsDiscountPct),
		PendingCount: pending,
	}
	if pending > 0 || q.Status.PendingApproval() {
		state.NextStep = NextStepAwaitingApprovals
		state.Message = s.engine.ApprovalMessage(q.BaseDiscountPct, q.OptionsDiscountPct)
	} else {
		state.NextStep = NextStepReadyToSend
		state.CanSend = q.Status == StatusDraft || q.Status == StatusReadyToSend
		if state.RequiresApproval && q.Status == StatusDraft {
			// Discount needs sign-off but no request was filed yet.
			state.CanSend = false
			state.NextStep = NextStepAwaitingApprovals
			state.Message = s.engine.ApprovalMessage(q.BaseDiscountPct, q.OptionsDiscountPct)
		}
	}
	return state, nil
}

// Send marks the quotation as sent and queues the client email and PDF.
// Blocked while any approval is outstanding.
func (s *Service) Send(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := s.ApprovalState(ctx, q)
	if err != nil {
		return nil, err
	}
	if !state.CanSend {
		return nil, fmt.Errorf("%w: %s", ErrApprovalRequired, state.NextStep)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusSent); err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueQuotationSent(ctx, id); err != nil {
			return nil, fmt.Errorf("enqueue quotation sent: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Accept(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusSent {
		return nil, fmt.Errorf("%w: only sent quotations can be accepted", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusAccepted); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusSent {
		return nil, fmt.Errorf("%w: only sent quotations can be rejected", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusRejected); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) resolveSelection(ctx context.Context, sel SelectionInput) ([]OptionSelection, []UpgradeSelection, error) {
	selOptions := make([]OptionSelection, 0, len(sel.OptionIDs))
	for _, optionID := range sel.OptionIDs {
		opt, err := s.optionRepo.Get(ctx, optionID)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve option %s: %w", optionID, err)
		}
		selOptions = append(selOptions, OptionSelection{
			OptionID:     opt.ID,
			Name:         opt.Name,
			Price:        opt.Price,
			DeliveryDays: opt.DeliveryDays,
		})
	}
	selUpgrades := make([]UpgradeSelection, 0, len(sel.UpgradeIDs))
	seen := make(map[uuid.UUID]string, len(sel.UpgradeIDs))
	for _, upgradeID := range sel.UpgradeIDs {
		up, err := s.memorialRepo.GetUpgrade(ctx, upgradeID)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve upgrade %s: %w", upgradeID, err)
		}
		if other, ok := seen[up.MemorialItemID]; ok {
			return nil, nil, fmt.Errorf("%w: upgrades %q and %q replace the same memorial item", ErrDiscountInvalid, other, up.Name)
		}
		seen[up.MemorialItemID] = up.Name
		selUpgrades = append(selUpgrades, UpgradeSelection{
			UpgradeID:      up.ID,
			MemorialItemID: up.MemorialItemID,
			Name:           up.Name,
			Price:          up.Price,
			DeliveryDays:   up.DeliveryDays,
		})
	}
	return selOptions, selUpgrades, nil
}

// recomputeTotals derives prices and delivery from the selection. Delivery
// impacts do not stack: the slowest item drives the schedule.
func recomputeTotals(q *Quotation) {
	var optionsTotal, upgradesTotal float64
	maxDays := 0
	for _, o := range q.SelectedOptions {
		optionsTotal += o.Price
		if o.DeliveryDays > maxDays {
			maxDays = o.DeliveryDays
		}
	}
	for _, u := range q.SelectedUpgrades {
		upgradesTotal += u.Price
		if u.DeliveryDays > maxDays {
			maxDays = u.DeliveryDays
		}
	}
	q.OptionsTotal = optionsTotal
	q.UpgradesTotal = upgradesTotal

	discountedBase := q.BasePrice * (1 - q.BaseDiscountPct/100)
	discountedExtras := (optionsTotal + upgradesTotal) * (1 - q.OptionsDiscountPct/100)
	q.FinalPrice = discountedBase + discountedExtras + q.CustomizationsTotal
	q.TotalDeliveryDays = q.BaseDeliveryDays + maxDays
}
