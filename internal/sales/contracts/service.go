package contracts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/catalog/hulls"
	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
)

var (
	ErrNotConvertible   = errors.New("quotation is not accepted")
	ErrAlreadyConverted = errors.New("quotation already converted to a contract")
)

// HullAssigner reserves a hull for a signed contract. Satisfied by
// hulls.Service.
type HullAssigner interface {
	Get(ctx context.Context, id uuid.UUID) (hulls.Hull, error)
	Assign(ctx context.Context, id uuid.UUID) error
}

// CustomizationSource yields approved customizations for the snapshot.
// Wired from the customizations module at startup; nil means none.
type CustomizationSource interface {
	ApprovedEntries(ctx context.Context, quotationID uuid.UUID) ([]CustomizationEntry, error)
}

type Service struct {
	repo           Repository
	quotations     quotations.Repository
	hulls          HullAssigner
	customizations CustomizationSource
}

func NewService(repo Repository, qrepo quotations.Repository, hullSvc HullAssigner, customizations CustomizationSource) *Service {
	return &Service{repo: repo, quotations: qrepo, hulls: hullSvc, customizations: customizations}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*Contract, error) {
	return s.repo.GetByQuotation(ctx, quotationID)
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Contract, int, error) {
	return s.repo.List(ctx, req)
}

// ConvertFromQuotation freezes an accepted quotation into a contract. The
// quotation's selections become the base snapshot and never change again;
// post-signature changes go through ATOs.
func (s *Service) ConvertFromQuotation(ctx context.Context, req ConvertRequest, createdBy int64) (*Contract, error) {
	q, err := s.quotations.Get(ctx, req.QuotationID)
	if err != nil {
		return nil, err
	}
	if q.Status != quotations.StatusAccepted {
		return nil, fmt.Errorf("%w: quotation %s is %s", ErrNotConvertible, q.Number, q.Status)
	}
	if existing, err := s.repo.GetByQuotation(ctx, q.ID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: contract %s", ErrAlreadyConverted, existing.Number)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	snapshot, err := s.buildSnapshot(ctx, q)
	if err != nil {
		return nil, err
	}

	contract := Contract{
		ID:           uuid.New(),
		QuotationID:  q.ID,
		ModelID:      q.ModelID,
		ClientName:   q.ClientName,
		ClientEmail:  q.ClientEmail,
		Status:       ContractStatusActive,
		FinalPrice:   q.FinalPrice,
		DeliveryDays: q.TotalDeliveryDays,
		BaseSnapshot: snapshot,
		SignedAt:     req.SignedAt,
		CreatedBy:    createdBy,
	}
	if contract.SignedAt == nil {
		now := time.Now()
		contract.SignedAt = &now
	}

	if req.HullID != nil {
		hull, err := s.hulls.Get(ctx, *req.HullID)
		if err != nil {
			return nil, err
		}
		if hull.ModelID != q.ModelID {
			return nil, fmt.Errorf("%w: hull %s belongs to another model", httpx.ErrValidation, hull.Number)
		}
		if err := s.hulls.Assign(ctx, hull.ID); err != nil {
			return nil, err
		}
		contract.HullID = &hull.ID
		contract.HullNumber = hull.Number
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, time.Now())
		if err != nil {
			return err
		}
		contract.Number = number
		return repo.Create(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	if err := s.quotations.UpdateStatus(ctx, q.ID, quotations.StatusConverted); err != nil {
		return nil, fmt.Errorf("mark quotation converted: %w", err)
	}
	return &contract, nil
}

func (s *Service) buildSnapshot(ctx context.Context, q *quotations.Quotation) (BaseSnapshot, error) {
	snapshot := BaseSnapshot{
		BasePrice:        q.BasePrice,
		BaseDeliveryDays: q.BaseDeliveryDays,
		SelectedOptions:  make([]SelectedOption, 0, len(q.SelectedOptions)),
		SelectedUpgrades: make([]SelectedUpgrade, 0, len(q.SelectedUpgrades)),
		Customizations:   []CustomizationEntry{},
	}
	for _, o := range q.SelectedOptions {
		snapshot.SelectedOptions = append(snapshot.SelectedOptions, SelectedOption{
			OptionID:     o.OptionID,
			Name:         o.Name,
			Price:        o.Price,
			DeliveryDays: o.DeliveryDays,
		})
	}
	for _, u := range q.SelectedUpgrades {
		snapshot.SelectedUpgrades = append(snapshot.SelectedUpgrades, SelectedUpgrade{
			UpgradeID:      u.UpgradeID,
			MemorialItemID: u.MemorialItemID,
			Name:           u.Name,
			Price:          u.Price,
			DeliveryDays:   u.DeliveryDays,
		})
	}
	if s.customizations != nil {
		entries, err := s.customizations.ApprovedEntries(ctx, q.ID)
		if err != nil {
			return BaseSnapshot{}, err
		}
		snapshot.Customizations = entries
	}
	if err := snapshot.Validate(); err != nil {
		return BaseSnapshot{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	return snapshot, nil
}

var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusActive: {ContractStatusDelivered, ContractStatusCancelled},
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, target ContractStatus) (*Contract, error) {
	contract, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, next := range contractTransitions[contract.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", httpx.ErrInvalidStatus, contract.Status, target)
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	contract.Status = target
	return contract, nil
}
