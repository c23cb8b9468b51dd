package options

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Option, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Option, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form OptionForm) (Option, error) {
	if err := validateForm(form); err != nil {
		return Option{}, err
	}
	return s.repo.Create(ctx, fromForm(form))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, form OptionForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, fromForm(form))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func fromForm(form OptionForm) Option {
	return Option{
		ModelID:      form.ModelID,
		Code:         strings.TrimSpace(form.Code),
		Name:         strings.TrimSpace(form.Name),
		Category:     strings.TrimSpace(form.Category),
		Price:        form.Price,
		DeliveryDays: form.DeliveryDays,
		IsActive:     form.IsActive,
	}
}

func validateForm(form OptionForm) error {
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
