package atos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okean-yachts/okean-cpq/internal/platform/db"
)

var ErrNotFound = errors.New("ato not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*ATO, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]ATO, error)
	Create(ctx context.Context, a ATO) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status ATOStatus) error
	NextNumber(ctx context.Context, contractID uuid.UUID) (int, error)

	ListConfigurations(ctx context.Context, atoID uuid.UUID) ([]Configuration, error)
	InsertConfiguration(ctx context.Context, cfg Configuration) error
	DeleteConfiguration(ctx context.Context, id uuid.UUID) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const atoColumns = `id, contract_id, number, title, status, notes, created_by, created_at, updated_at`

func scanATO(row pgx.Row) (*ATO, error) {
	var a ATO
	err := row.Scan(&a.ID, &a.ContractID, &a.Number, &a.Title, &a.Status, &a.Notes, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*ATO, error) {
	return scanATO(r.db.QueryRow(ctx, `SELECT `+atoColumns+` FROM atos WHERE id = $1`, id))
}

func (r *repository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]ATO, error) {
	rows, err := r.db.Query(ctx, `SELECT `+atoColumns+` FROM atos WHERE contract_id = $1 ORDER BY number`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ATO
	for rows.Next() {
		a, err := scanATO(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, a ATO) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO atos (id, contract_id, number, title, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		a.ID, a.ContractID, a.Number, a.Title, a.Status, a.Notes, a.CreatedBy, a.CreatedAt)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status ATOStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE atos SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) NextNumber(ctx context.Context, contractID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(number), 0) + 1 FROM atos WHERE contract_id = $1`, contractID).Scan(&n)
	return n, err
}

const configColumns = `id, ato_id, item_type, item_id, memorial_item_id, name, original_price, calculated_price, discount_percentage, delivery_impact_days, details, created_at`

func (r *repository) ListConfigurations(ctx context.Context, atoID uuid.UUID) ([]Configuration, error) {
	rows, err := r.db.Query(ctx, `SELECT `+configColumns+` FROM ato_configurations WHERE ato_id = $1 ORDER BY created_at`, atoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Configuration
	for rows.Next() {
		var cfg Configuration
		var details []byte
		if err := rows.Scan(&cfg.ID, &cfg.ATOID, &cfg.ItemType, &cfg.ItemID, &cfg.MemorialItemID,
			&cfg.Name, &cfg.OriginalPrice, &cfg.CalculatedPrice, &cfg.DiscountPct,
			&cfg.DeliveryImpactDays, &details, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &cfg.Details); err != nil {
				return nil, fmt.Errorf("decode configuration details: %w", err)
			}
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (r *repository) InsertConfiguration(ctx context.Context, cfg Configuration) error {
	details, err := json.Marshal(cfg.Details)
	if err != nil {
		return fmt.Errorf("encode configuration details: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO ato_configurations (id, ato_id, item_type, item_id, memorial_item_id, name, original_price, calculated_price, discount_percentage, delivery_impact_days, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		cfg.ID, cfg.ATOID, cfg.ItemType, cfg.ItemID, cfg.MemorialItemID, cfg.Name,
		cfg.OriginalPrice, cfg.CalculatedPrice, cfg.DiscountPct, cfg.DeliveryImpactDays, details, cfg.CreatedAt)
	return err
}

func (r *repository) DeleteConfiguration(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ato_configurations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
