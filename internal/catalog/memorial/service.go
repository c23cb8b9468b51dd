package memorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/catalog/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListItems(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	return s.repo.ListItems(ctx, filters)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) CreateItem(ctx context.Context, form ItemForm) (Item, error) {
	if err := validateItem(form); err != nil {
		return Item{}, err
	}
	return s.repo.CreateItem(ctx, Item{
		ModelID:  form.ModelID,
		Code:     strings.TrimSpace(form.Code),
		Name:     strings.TrimSpace(form.Name),
		Section:  strings.TrimSpace(form.Section),
		IsActive: form.IsActive,
	})
}

func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, form ItemForm) error {
	if err := validateItem(form); err != nil {
		return err
	}
	return s.repo.UpdateItem(ctx, id, Item{
		ModelID:  form.ModelID,
		Code:     strings.TrimSpace(form.Code),
		Name:     strings.TrimSpace(form.Name),
		Section:  strings.TrimSpace(form.Section),
		IsActive: form.IsActive,
	})
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteItem(ctx, id)
}

func (s *Service) ListUpgrades(ctx context.Context, filters shared.ListFilters) ([]Upgrade, int, error) {
	return s.repo.ListUpgrades(ctx, filters)
}

func (s *Service) GetUpgrade(ctx context.Context, id uuid.UUID) (Upgrade, error) {
	return s.repo.GetUpgrade(ctx, id)
}

func (s *Service) CreateUpgrade(ctx context.Context, form UpgradeForm) (Upgrade, error) {
	if err := validateUpgrade(form); err != nil {
		return Upgrade{}, err
	}
	if _, err := s.repo.GetItem(ctx, form.MemorialItemID); err != nil {
		return Upgrade{}, fmt.Errorf("memorial item %s: %w", form.MemorialItemID, err)
	}
	return s.repo.CreateUpgrade(ctx, Upgrade{
		MemorialItemID: form.MemorialItemID,
		Code:           strings.TrimSpace(form.Code),
		Name:           strings.TrimSpace(form.Name),
		Price:          form.Price,
		DeliveryDays:   form.DeliveryDays,
		IsActive:       form.IsActive,
	})
}

func (s *Service) UpdateUpgrade(ctx context.Context, id uuid.UUID, form UpgradeForm) error {
	if err := validateUpgrade(form); err != nil {
		return err
	}
	return s.repo.UpdateUpgrade(ctx, id, Upgrade{
		MemorialItemID: form.MemorialItemID,
		Code:           strings.TrimSpace(form.Code),
		Name:           strings.TrimSpace(form.Name),
		Price:          form.Price,
		DeliveryDays:   form.DeliveryDays,
		IsActive:       form.IsActive,
	})
}

func (s *Service) DeleteUpgrade(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUpgrade(ctx, id)
}

func validateItem(form ItemForm) error {
	if strings.TrimSpace(form.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}

func validateUpgrade(form UpgradeForm) error {
	if form.MemorialItemID == uuid.Nil {
		return fmt.Errorf("%w: memorial_item_id", shared.ErrRequiredField)
	}
	if strings.TrimSpace(form.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if form.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", shared.ErrValidation)
	}
	if form.DeliveryDays < 0 {
		return fmt.Errorf("%w: delivery days must not be negative", shared.ErrValidation)
	}
	return nil
}
