package hulls

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Hull, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Hull, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form HullForm) (Hull, error) {
	if err := validateForm(form); err != nil {
		return Hull{}, err
	}
	return s.repo.Create(ctx, Hull{
		ModelID: form.ModelID,
		Number:  strings.TrimSpace(form.Number),
		Status:  form.Status,
	})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, form HullForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, Hull{
		ModelID: form.ModelID,
		Number:  strings.TrimSpace(form.Number),
		Status:  form.Status,
	})
}

// Assign marks a hull as taken by a contract.
func (s *Service) Assign(ctx context.Context, id uuid.UUID) error {
	hull, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if hull.Status == StatusAssigned {
		return fmt.Errorf("%w: hull %s already assigned", shared.ErrValidation, hull.Number)
	}
	return s.repo.SetStatus(ctx, id, StatusAssigned)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validateForm(form HullForm) error {
	if form.ModelID == uuid.Nil {
		return fmt.Errorf("%w: model_id", shared.ErrRequiredField)
	}
	if strings.TrimSpace(form.Number) == "" {
		return fmt.Errorf("%w: number", shared.ErrRequiredField)
	}
	if !form.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, form.Status)
	}
	return nil
}
