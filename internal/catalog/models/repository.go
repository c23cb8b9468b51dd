package models

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okean-yachts/okean-cpq/internal/catalog/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]YachtModel, int, error)
	Get(ctx context.Context, id uuid.UUID) (YachtModel, error)
	Create(ctx context.Context, m YachtModel) (YachtModel, error)
	Update(ctx context.Context, id uuid.UUID, m YachtModel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const modelColumns = `id, code, name, base_price, base_delivery_days, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]YachtModel, int, error) {
	query := `SELECT ` + modelColumns + ` FROM yacht_models WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM yacht_models WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		cond := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		cond := ` AND is_active = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []YachtModel
	for rows.Next() {
		var m YachtModel
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.BasePrice, &m.BaseDeliveryDays, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (YachtModel, error) {
	var m YachtModel
	err := r.db.QueryRow(ctx, `SELECT `+modelColumns+` FROM yacht_models WHERE id = $1`, id).
		Scan(&m.ID, &m.Code, &m.Name, &m.BasePrice, &m.BaseDeliveryDays, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return YachtModel{}, shared.ErrNotFound
	}
	return m, err
}

func (r *repository) Create(ctx context.Context, m YachtModel) (YachtModel, error) {
	now := time.Now()
	m.ID = uuid.New()
	err := r.db.QueryRow(ctx,
		`INSERT INTO yacht_models (id, code, name, base_price, base_delivery_days, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		m.ID, m.Code, m.Name, m.BasePrice, m.BaseDeliveryDays, m.IsActive, now).Scan(&m.ID)
	if err != nil {
		return YachtModel{}, err
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, m YachtModel) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE yacht_models SET code = $2, name = $3, base_price = $4, base_delivery_days = $5, is_active = $6, updated_at = $7 WHERE id = $1`,
		id, m.Code, m.Name, m.BasePrice, m.BaseDeliveryDays, m.IsActive, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM yacht_models WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "base_price":
		return "base_price " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
