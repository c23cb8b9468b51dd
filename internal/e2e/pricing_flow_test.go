package e2e

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/okean-yachts/okean-cpq/internal/pricing/limits"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
)

type memLimitsRepo struct {
	rows map[limits.LimitType]limits.Config
}

func newMemLimitsRepo() *memLimitsRepo {
	return &memLimitsRepo{rows: map[limits.LimitType]limits.Config{
		limits.LimitTypeBase:    {ID: uuid.New(), LimitType: limits.LimitTypeBase, NoApprovalMax: 10, DirectorApprovalMax: 15, AdminApprovalRequiredAbove: 15},
		limits.LimitTypeOptions: {ID: uuid.New(), LimitType: limits.LimitTypeOptions, NoApprovalMax: 8, DirectorApprovalMax: 12, AdminApprovalRequiredAbove: 12},
	}}
}

func (m *memLimitsRepo) List(ctx context.Context) ([]limits.Config, error) {
	out := make([]limits.Config, 0, len(m.rows))
	for _, cfg := range m.rows {
		out = append(out, cfg)
	}
	return out, nil
}

func (m *memLimitsRepo) GetByType(ctx context.Context, t limits.LimitType) (*limits.Config, error) {
	cfg, ok := m.rows[t]
	if !ok {
		return nil, limits.ErrNotFound
	}
	return &cfg, nil
}

func (m *memLimitsRepo) Update(ctx context.Context, cfg limits.Config) (*limits.Config, error) {
	m.rows[cfg.LimitType] = cfg
	return &cfg, nil
}

// The configuration store, cache and policy engine working together: a limits
// update followed by invalidation must change which approver the engine
// demands.
func TestLimitsUpdateChangesApproverDecision(t *testing.T) {
	repo := newMemLimitsRepo()
	logger := slog.New(slog.DiscardHandler)
	cache := limits.NewCache(repo, logger, time.Minute)
	engine := policy.NewEngine(cache)

	// Warm the cache so Current serves configured rows, not defaults.
	cache.Get(context.Background())

	role, ok := engine.RequiredApproverRole(12, 0)
	require.True(t, ok)
	require.Equal(t, policy.RoleDiretorComercial, role)

	// Tighten the base ceiling: 12% now exceeds director authority.
	row, err := repo.GetByType(context.Background(), limits.LimitTypeBase)
	require.NoError(t, err)
	row.DirectorApprovalMax = 11
	row.AdminApprovalRequiredAbove = 11
	_, err = repo.Update(context.Background(), *row)
	require.NoError(t, err)

	// Stale cache still answers with the old snapshot.
	role, ok = engine.RequiredApproverRole(12, 0)
	require.True(t, ok)
	require.Equal(t, policy.RoleDiretorComercial, role)

	cache.Invalidate()
	cache.Get(context.Background())

	role, ok = engine.RequiredApproverRole(12, 0)
	require.True(t, ok)
	require.Equal(t, policy.RoleAdministrador, role)
}
