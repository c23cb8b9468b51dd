package models

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]YachtModel, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (YachtModel, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form YachtModelForm) (YachtModel, error) {
	if err := validateForm(form); err != nil {
		return YachtModel{}, err
	}
	return s.repo.Create(ctx, YachtModel{
		Code:             strings.TrimSpace(form.Code),
		Name:             strings.TrimSpace(form.Name),
		BasePrice:        form.BasePrice,
		BaseDeliveryDays: form.BaseDeliveryDays,
		IsActive:         form.IsActive,
	})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, form YachtModelForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, YachtModel{
		Code:             strings.TrimSpace(form.Code),
		Name:             strings.TrimSpace(form.Name),
		BasePrice:        form.BasePrice,
		BaseDeliveryDays: form.BaseDeliveryDays,
		IsActive:         form.IsActive,
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validateForm(form YachtModelForm) error {
	if strings.TrimSpace(form.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if form.BasePrice < 0 {
		return fmt.Errorf("%w: base price must not be negative", shared.ErrValidation)
	}
	if form.BaseDeliveryDays < 0 {
		return fmt.Errorf("%w: base delivery days must not be negative", shared.ErrValidation)
	}
	return nil
}
