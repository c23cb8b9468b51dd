package options

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
	List(ctx context.Context, filters shared.ListFilters) ([]Option, int, error)
	Get(ctx context.Context, id uuid.UUID) (Option, error)
	Create(ctx context.Context, o Option) (Option, error)
	Update(ctx context.Context, id uuid.UUID, o Option) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const optionColumns = `id, model_id, code, name, category, price, delivery_days, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Option, int, error) {
	query := `SELECT ` + optionColumns + ` FROM options WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM options WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		cond := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Category != nil {
		argCount++
		cond := ` AND category = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *filters.Category)
	}
	if filters.ModelID != nil {
		argCount++
		cond := ` AND model_id = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *filters.ModelID)
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

	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch filters.SortBy {
	case "price":
		query += ` ORDER BY price ` + dir
	case "category":
		query += ` ORDER BY category ` + dir + `, name ASC`
	default:
		query += ` ORDER BY name ` + dir
	}
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

	var out []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.ModelID, &o.Code, &o.Name, &o.Category, &o.Price, &o.DeliveryDays, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Option, error) {
	var o Option
	err := r.db.QueryRow(ctx, `SELECT `+optionColumns+` FROM options WHERE id = $1`, id).
		Scan(&o.ID, &o.ModelID, &o.Code, &o.Name, &o.Category, &o.Price, &o.DeliveryDays, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Option{}, shared.ErrNotFound
	}
	return o, err
}

func (r *repository) Create(ctx context.Context, o Option) (Option, error) {
	now := time.Now()
	o.ID = uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO options (id, model_id, code, name, category, price, delivery_days, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		o.ID, o.ModelID, o.Code, o.Name, o.Category, o.Price, o.DeliveryDays, o.IsActive, now)
	if err != nil {
		return Option{}, err
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return o, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, o Option) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE options SET model_id = $2, code = $3, name = $4, category = $5, price = $6, delivery_days = $7, is_active = $8, updated_at = $9 WHERE id = $1`,
		id, o.ModelID, o.Code, o.Name, o.Category, o.Price, o.DeliveryDays, o.IsActive, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM options WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
