package limits

import (
	"context"
	"fmt"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/shared"
)

// UpdateInput carries an explicit "update limits" action for one category.
type UpdateInput struct {
	LimitType                  LimitType `json:"limit_type" validate:"required"`
	NoApprovalMax              float64   `json:"no_approval_max" validate:"gte=0,lte=100"`
	DirectorApprovalMax        float64   `json:"director_approval_max" validate:"gte=0,lte=100"`
	AdminApprovalRequiredAbove float64   `json:"admin_approval_required_above" validate:"gte=0,lte=100"`
}

// Service exposes threshold configuration reads and the update mutation.
type Service struct {
	repo  Repository
	cache *Cache
	audit *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, cache *Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// List returns all configured limit rows.
func (s *Service) List(ctx context.Context) ([]Config, error) {
	return s.repo.List(ctx)
}

// Update validates and persists new thresholds for one category, then
// invalidates the cache so subsequent reads observe the new values.
func (s *Service) Update(ctx context.Context, input UpdateInput, updatedBy int64) (*Config, error) {
	if !input.LimitType.Valid() {
		return nil, fmt.Errorf("%w: unknown limit type %q", httpx.ErrValidation, input.LimitType)
	}
	if input.NoApprovalMax > input.DirectorApprovalMax ||
		input.DirectorApprovalMax > input.AdminApprovalRequiredAbove {
		return nil, fmt.Errorf("%w: thresholds must satisfy no_approval <= director <= admin", httpx.ErrValidation)
	}

	cfg, err := s.repo.Update(ctx, Config{
		LimitType:                  input.LimitType,
		NoApprovalMax:              input.NoApprovalMax,
		DirectorApprovalMax:        input.DirectorApprovalMax,
		AdminApprovalRequiredAbove: input.AdminApprovalRequiredAbove,
		UpdatedBy:                  &updatedBy,
	})
	if err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("%w: limit type %q", httpx.ErrNotFound, input.LimitType)
		}
		return nil, fmt.Errorf("update discount limits: %w", err)
	}

	s.cache.Invalidate()

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  updatedBy,
			Action:   "pricing.limits.update",
			Entity:   "discount_limits_config",
			EntityID: string(cfg.LimitType),
			Meta: map[string]any{
				"no_approval_max":               cfg.NoApprovalMax,
				"director_approval_max":         cfg.DirectorApprovalMax,
				"admin_approval_required_above": cfg.AdminApprovalRequiredAbove,
			},
		})
	}
	return cfg, nil
}

// CustomizationLimits returns the customization category thresholds, degrading
// to defaults when the row is missing or the store is unreachable.
func (s *Service) CustomizationLimits(ctx context.Context) policy.Limits {
	cfg, err := s.repo.GetByType(ctx, LimitTypeCustomization)
	if err != nil {
		return DefaultCustomization
	}
	return cfg.Limits()
}
