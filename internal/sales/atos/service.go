package atos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/catalog/memorial"
	"github.com/okean-yachts/okean-cpq/internal/catalog/options"
	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
)

var ErrInvalidStatus = errors.New("invalid ato status transition")

type Service struct {
	repo         Repository
	contractRepo contracts.Repository
	optionRepo   options.Repository
	memorialRepo memorial.Repository
}

func NewService(repo Repository, contractRepo contracts.Repository, optionRepo options.Repository, memorialRepo memorial.Repository) *Service {
	return &Service{repo: repo, contractRepo: contractRepo, optionRepo: optionRepo, memorialRepo: memorialRepo}
}

func (s *Service) Create(ctx context.Context, req CreateATORequest, createdBy int64) (*ATO, error) {
	if _, err := s.contractRepo.Get(ctx, req.ContractID); err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}

	ato := ATO{
		ID:         uuid.New(),
		ContractID: req.ContractID,
		Title:      req.Title,
		Status:     StatusDraft,
		Notes:      req.Notes,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx, req.ContractID)
		if err != nil {
			return fmt.Errorf("next ato number: %w", err)
		}
		ato.Number = number
		return repo.Create(ctx, ato)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, ato.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ATO, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByContract(ctx context.Context, contractID uuid.UUID) ([]ATO, error) {
	return s.repo.ListByContract(ctx, contractID)
}

func (s *Service) Configurations(ctx context.Context, atoID uuid.UUID) ([]Configuration, error) {
	return s.repo.ListConfigurations(ctx, atoID)
}

// AddConfiguration resolves the item against the catalog and stores the
// priced line. Prices come from the catalog, never from the client.
func (s *Service) AddConfiguration(ctx context.Context, atoID uuid.UUID, req AddConfigurationRequest) (*Configuration, error) {
	ato, err := s.repo.Get(ctx, atoID)
	if err != nil {
		return nil, err
	}
	if ato.Status != StatusDraft {
		return nil, fmt.Errorf("%w: configurations can only change on draft ATOs", ErrInvalidStatus)
	}
	if !req.ItemType.Valid() {
		return nil, fmt.Errorf("unknown item type %q", req.ItemType)
	}

	cfg := Configuration{
		ID:          uuid.New(),
		ATOID:       atoID,
		ItemType:    req.ItemType,
		ItemID:      req.ItemID,
		DiscountPct: req.DiscountPct,
		Details:     req.Details,
		CreatedAt:   time.Now(),
	}

	switch req.ItemType {
	case ItemOption:
		opt, err := s.optionRepo.Get(ctx, req.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve option %s: %w", req.ItemID, err)
		}
		cfg.Name = opt.Name
		cfg.OriginalPrice = opt.Price
		cfg.DeliveryImpactDays = opt.DeliveryDays
	case ItemUpgrade:
		up, err := s.memorialRepo.GetUpgrade(ctx, req.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve upgrade %s: %w", req.ItemID, err)
		}
		memorialItemID := up.MemorialItemID
		cfg.MemorialItemID = &memorialItemID
		cfg.Name = up.Name
		cfg.OriginalPrice = up.Price
		cfg.DeliveryImpactDays = up.DeliveryDays
	case ItemMemorialItem:
		item, err := s.memorialRepo.GetItem(ctx, req.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve memorial item %s: %w", req.ItemID, err)
		}
		cfg.Name = item.Name
	case ItemDefineFinishing, ItemCustomization:
		if req.Name == "" || req.Price == nil {
			return nil, fmt.Errorf("%s items require name and price", req.ItemType)
		}
		cfg.Name = req.Name
		cfg.OriginalPrice = *req.Price
	}

	if req.Name != "" {
		cfg.Name = req.Name
	}
	if req.Price != nil {
		cfg.OriginalPrice = *req.Price
	}
	if req.DeliveryImpactDays != nil {
		cfg.DeliveryImpactDays = *req.DeliveryImpactDays
	}
	cfg.CalculatedPrice = cfg.OriginalPrice * (1 - cfg.DiscountPct/100)

	if err := s.repo.InsertConfiguration(ctx, cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Service) RemoveConfiguration(ctx context.Context, atoID, configID uuid.UUID) error {
	ato, err := s.repo.Get(ctx, atoID)
	if err != nil {
		return err
	}
	if ato.Status != StatusDraft {
		return fmt.Errorf("%w: configurations can only change on draft ATOs", ErrInvalidStatus)
	}
	return s.repo.DeleteConfiguration(ctx, configID)
}

var atoTransitions = map[ATOStatus][]ATOStatus{
	StatusDraft:         {StatusPendingReview},
	StatusPendingReview: {StatusApproved, StatusRejected},
	StatusApproved:      {StatusSent},
	StatusRejected:      {StatusDraft},
}

func (s *Service) Transition(ctx context.Context, id uuid.UUID, target ATOStatus) (*ATO, error) {
	ato, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, next := range atoTransitions[ato.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, ato.Status, target)
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// AggregatedImpact computes the full effect of one ATO. Missing ATO,
// contract, or upgrade references fail the whole computation; callers never
// see a partial number.
func (s *Service) AggregatedImpact(ctx context.Context, atoID uuid.UUID) (AggregatedImpact, error) {
	ato, err := s.repo.Get(ctx, atoID)
	if err != nil {
		return AggregatedImpact{}, fmt.Errorf("%w: %v", ErrIncompleteData, err)
	}
	contract, err := s.contractRepo.Get(ctx, ato.ContractID)
	if err != nil {
		return AggregatedImpact{}, fmt.Errorf("%w: contract: %v", ErrIncompleteData, err)
	}
	configs, err := s.repo.ListConfigurations(ctx, atoID)
	if err != nil {
		return AggregatedImpact{}, err
	}
	return ComputeImpact(*ato, contract.BaseSnapshot, configs)
}

// ContractImpact rolls up every approved (or sent) ATO of a contract.
func (s *Service) ContractImpact(ctx context.Context, contractID uuid.UUID) (ContractImpact, error) {
	contract, err := s.contractRepo.Get(ctx, contractID)
	if err != nil {
		return ContractImpact{}, fmt.Errorf("%w: contract: %v", ErrIncompleteData, err)
	}
	all, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return ContractImpact{}, err
	}
	var items []ATOWithConfigs
	for _, ato := range all {
		if ato.Status != StatusApproved && ato.Status != StatusSent {
			continue
		}
		configs, err := s.repo.ListConfigurations(ctx, ato.ID)
		if err != nil {
			return ContractImpact{}, err
		}
		items = append(items, ATOWithConfigs{ATO: ato, Configs: configs})
	}
	return ComputeContractImpact(contractID, contract.BaseSnapshot, items)
}

// Usage builds the usage index for a contract, covering the snapshot and
// all its ATOs regardless of status.
func (s *Service) Usage(ctx context.Context, contractID uuid.UUID) (*UsageIndex, error) {
	contract, err := s.contractRepo.Get(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	all, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	var items []ATOWithConfigs
	for _, ato := range all {
		configs, err := s.repo.ListConfigurations(ctx, ato.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, ATOWithConfigs{ATO: ato, Configs: configs})
	}
	return BuildUsageIndex(contract.BaseSnapshot, items), nil
}
