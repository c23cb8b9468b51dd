package limits

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested limit row does not exist.
var ErrNotFound = errors.New("limits: not found")

// Repository defines persistence for discount limit configuration.
type Repository interface {
	List(ctx context.Context) ([]Config, error)
	GetByType(ctx context.Context, limitType LimitType) (*Config, error)
	Update(ctx context.Context, cfg Config) (*Config, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const configColumns = `id, limit_type, no_approval_max, director_approval_max, admin_approval_required_above, updated_by, updated_at`

func (r *repository) List(ctx context.Context) ([]Config, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM discount_limits_config ORDER BY limit_type`, configColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (r *repository) GetByType(ctx context.Context, limitType LimitType) (*Config, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM discount_limits_config WHERE limit_type = $1`, configColumns), string(limitType))
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) Update(ctx context.Context, cfg Config) (*Config, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE discount_limits_config
		SET no_approval_max = $2,
		    director_approval_max = $3,
		    admin_approval_required_above = $4,
		    updated_by = $5,
		    updated_at = NOW()
		WHERE limit_type = $1
		RETURNING %s`, configColumns),
		string(cfg.LimitType), cfg.NoApprovalMax, cfg.DirectorApprovalMax,
		cfg.AdminApprovalRequiredAbove, cfg.UpdatedBy)
	updated, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func scanConfig(row pgx.Row) (Config, error) {
	var cfg Config
	var limitType string
	var updatedBy pgtype.Int8
	var updatedAt pgtype.Timestamptz
	if err := row.Scan(&cfg.ID, &limitType, &cfg.NoApprovalMax, &cfg.DirectorApprovalMax,
		&cfg.AdminApprovalRequiredAbove, &updatedBy, &updatedAt); err != nil {
		return Config{}, err
	}
	cfg.LimitType = LimitType(limitType)
	if updatedBy.Valid {
		cfg.UpdatedBy = &updatedBy.Int64
	}
	if updatedAt.Valid {
		cfg.UpdatedAt = &updatedAt.Time
	}
	return cfg, nil
}
