package approvals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
	"github.com/okean-yachts/okean-cpq/internal/shared"
)

var (
	ErrInsufficientAuthority = errors.New("reviewer lacks authority for this approval")
	ErrQuotationNotPending   = errors.New("quotation is not awaiting this approval")
)

type Service struct {
	repo          Repository
	quotationRepo quotations.Repository
	engine        *policy.Engine
	audit         *shared.AuditLogger
}

func NewService(repo Repository, quotationRepo quotations.Repository, engine *policy.Engine, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, quotationRepo: quotationRepo, engine: engine, audit: audit}
}

// Create files an approval request and moves the quotation into the matching
// pending status.
func (s *Service) Create(ctx context.Context, req CreateApprovalRequest, requestedBy int64) (*Approval, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown approval type %q", req.Type)
	}
	quotation, err := s.quotationRepo.Get(ctx, req.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("load quotation: %w", err)
	}
	if quotation.Status == quotations.StatusConverted || quotation.Status == quotations.StatusAccepted {
		return nil, fmt.Errorf("%w: quotation %s is %s", ErrQuotationNotPending, quotation.Number, quotation.Status)
	}

	approval := Approval{
		ID:             uuid.New(),
		QuotationID:    req.QuotationID,
		Type:           req.Type,
		Status:         StatusPending,
		RequestedBy:    requestedBy,
		RequestedAt:    time.Now(),
		RequestDetails: req.RequestDetails,
		Notes:          req.Notes,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, approval); err != nil {
			return fmt.Errorf("create approval: %w", err)
		}
		pending, err := repo.ListByQuotation(ctx, req.QuotationID)
		if err != nil {
			return err
		}
		return s.quotationRepo.UpdateStatus(ctx, req.QuotationID, statusFromPending(pending))
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, requestedBy, "approval.requested", approval.ID, map[string]any{
		"quotation_id": req.QuotationID,
		"type":         string(req.Type),
	})
	return s.repo.Get(ctx, approval.ID)
}

// Review resolves a pending approval exactly once and recomputes the
// quotation status from whatever is still outstanding.
func (s *Service) Review(ctx context.Context, id uuid.UUID, req ReviewRequest, reviewerID int64, reviewerRoles []policy.Role) (*Approval, error) {
	approval, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if approval.Status != StatusPending {
		return nil, ErrAlreadyReviewed
	}

	quotation, err := s.quotationRepo.Get(ctx, approval.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("load quotation: %w", err)
	}
	if err := s.checkAuthority(approval.Type, quotation, reviewerRoles); err != nil {
		return nil, err
	}

	status := StatusApproved
	if req.Action == ActionReject {
		status = StatusRejected
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.MarkReviewed(ctx, id, status, reviewerID, req.ReviewNotes); err != nil {
			return err
		}
		remaining, err := repo.ListByQuotation(ctx, approval.QuotationID)
		if err != nil {
			return err
		}
		return s.quotationRepo.UpdateStatus(ctx, approval.QuotationID, statusFromPending(remaining))
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, reviewerID, "approval."+string(req.Action), id, map[string]any{
		"quotation_id": approval.QuotationID,
		"type":         string(approval.Type),
	})
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Approval, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Approval, error) {
	return s.repo.ListByQuotation(ctx, quotationID)
}

func (s *Service) ListPending(ctx context.Context) ([]Approval, error) {
	return s.repo.ListPending(ctx)
}

func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.repo.CountAllPending(ctx)
}

// recordAudit logs the decision trail. Failures are not propagated.
func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, approvalID uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "approval",
		EntityID: approvalID.String(),
		Meta:     meta,
	})
}

func (s *Service) checkAuthority(approvalType ApprovalType, quotation *quotations.Quotation, roles []policy.Role) error {
	switch approvalType {
	case TypeDiscount, TypeCommercial:
		if !s.engine.CanApproveDiscount(quotation.BaseDiscountPct, quotation.OptionsDiscountPct, roles) {
			return fmt.Errorf("%w: discount %.1f%%/%.1f%%", ErrInsufficientAuthority,
				quotation.BaseDiscountPct, quotation.OptionsDiscountPct)
		}
	case TypeTechnical:
		if policy.HighestAuthority(roles).Authority() < policy.AuthorityPM {
			return fmt.Errorf("%w: technical review requires engineering", ErrInsufficientAuthority)
		}
	case TypeCustomization:
		if policy.HighestAuthority(roles).Authority() < policy.AuthorityDirector {
			return fmt.Errorf("%w: customization review requires a director", ErrInsufficientAuthority)
		}
	}
	return nil
}

// statusFromPending maps the outstanding approval mix onto a quotation
// status. With nothing pending the quotation returns to draft so the team
// can send or rework it.
func statusFromPending(all []Approval) quotations.QuotationStatus {
	var commercial, technical, other bool
	for _, a := range all {
		if a.Status != StatusPending {
			continue
		}
		switch a.Type {
		case TypeCommercial:
			commercial = true
		case TypeTechnical:
			technical = true
		default:
			other = true
		}
	}
	switch {
	case commercial && technical:
		return quotations.StatusPendingApproval
	case commercial:
		return quotations.StatusPendingCommercialApproval
	case technical:
		return quotations.StatusPendingTechnicalApproval
	case other:
		return quotations.StatusPendingApproval
	default:
		return quotations.StatusDraft
	}
}
