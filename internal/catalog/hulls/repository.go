package hulls

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
	List(ctx context.Context, filters shared.ListFilters) ([]Hull, int, error)
	Get(ctx context.Context, id uuid.UUID) (Hull, error)
	Create(ctx context.Context, h Hull) (Hull, error)
	Update(ctx context.Context, id uuid.UUID, h Hull) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const hullColumns = `id, model_id, number, status, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Hull, int, error) {
	query := `SELECT ` + hullColumns + ` FROM hulls WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM hulls WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		cond := ` AND number ILIKE $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.ModelID != nil {
		argCount++
		cond := ` AND model_id = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *filters.ModelID)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY number`
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

	var out []Hull
	for rows.Next() {
		var h Hull
		if err := rows.Scan(&h.ID, &h.ModelID, &h.Number, &h.Status, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Hull, error) {
	var h Hull
	err := r.db.QueryRow(ctx, `SELECT `+hullColumns+` FROM hulls WHERE id = $1`, id).
		Scan(&h.ID, &h.ModelID, &h.Number, &h.Status, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Hull{}, shared.ErrNotFound
	}
	return h, err
}

func (r *repository) Create(ctx context.Context, h Hull) (Hull, error) {
	now := time.Now()
	h.ID = uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO hulls (id, model_id, number, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`,
		h.ID, h.ModelID, h.Number, h.Status, now)
	if err != nil {
		return Hull{}, err
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	return h, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, h Hull) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE hulls SET model_id = $2, number = $3, status = $4, updated_at = $5 WHERE id = $1`,
		id, h.ModelID, h.Number, h.Status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE hulls SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM hulls WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
