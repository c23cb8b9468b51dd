package memorial

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
	ListItems(ctx context.Context, filters shared.ListFilters) ([]Item, int, error)
	GetItem(ctx context.Context, id uuid.UUID) (Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, item Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	ListUpgrades(ctx context.Context, filters shared.ListFilters) ([]Upgrade, int, error)
	GetUpgrade(ctx context.Context, id uuid.UUID) (Upgrade, error)
	CreateUpgrade(ctx context.Context, u Upgrade) (Upgrade, error)
	UpdateUpgrade(ctx context.Context, id uuid.UUID, u Upgrade) error
	DeleteUpgrade(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const itemColumns = `id, model_id, code, name, section, is_active, created_at, updated_at`
const upgradeColumns = `id, memorial_item_id, code, name, price, delivery_days, is_active, created_at, updated_at`

func (r *repository) ListItems(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	query := `SELECT ` + itemColumns + ` FROM memorial_items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM memorial_items WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		cond := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
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

	query += ` ORDER BY section, code`
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

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ModelID, &it.Code, &it.Name, &it.Section, &it.IsActive, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	return out, total, rows.Err()
}

func (r *repository) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	var it Item
	err := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM memorial_items WHERE id = $1`, id).
		Scan(&it.ID, &it.ModelID, &it.Code, &it.Name, &it.Section, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, shared.ErrNotFound
	}
	return it, err
}

func (r *repository) CreateItem(ctx context.Context, item Item) (Item, error) {
	now := time.Now()
	item.ID = uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO memorial_items (id, model_id, code, name, section, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		item.ID, item.ModelID, item.Code, item.Name, item.Section, item.IsActive, now)
	if err != nil {
		return Item{}, err
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, item Item) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE memorial_items SET model_id = $2, code = $3, name = $4, section = $5, is_active = $6, updated_at = $7 WHERE id = $1`,
		id, item.ModelID, item.Code, item.Name, item.Section, item.IsActive, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM memorial_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListUpgrades(ctx context.Context, filters shared.ListFilters) ([]Upgrade, int, error) {
	query := `SELECT ` + upgradeColumns + ` FROM memorial_upgrades WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM memorial_upgrades WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		cond := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.MemorialItemID != nil {
		argCount++
		cond := ` AND memorial_item_id = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *filters.MemorialItemID)
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

	query += ` ORDER BY name`
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

	var out []Upgrade
	for rows.Next() {
		var u Upgrade
		if err := rows.Scan(&u.ID, &u.MemorialItemID, &u.Code, &u.Name, &u.Price, &u.DeliveryDays, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *repository) GetUpgrade(ctx context.Context, id uuid.UUID) (Upgrade, error) {
	var u Upgrade
	err := r.db.QueryRow(ctx, `SELECT `+upgradeColumns+` FROM memorial_upgrades WHERE id = $1`, id).
		Scan(&u.ID, &u.MemorialItemID, &u.Code, &u.Name, &u.Price, &u.DeliveryDays, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Upgrade{}, shared.ErrNotFound
	}
	return u, err
}

func (r *repository) CreateUpgrade(ctx context.Context, u Upgrade) (Upgrade, error) {
	now := time.Now()
	u.ID = uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO memorial_upgrades (id, memorial_item_id, code, name, price, delivery_days, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		u.ID, u.MemorialItemID, u.Code, u.Name, u.Price, u.DeliveryDays, u.IsActive, now)
	if err != nil {
		return Upgrade{}, err
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return u, nil
}

func (r *repository) UpdateUpgrade(ctx context.Context, id uuid.UUID, u Upgrade) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE memorial_upgrades SET memorial_item_id = $2, code = $3, name = $4, price = $5, delivery_days = $6, is_active = $7, updated_at = $8 WHERE id = $1`,
		id, u.MemorialItemID, u.Code, u.Name, u.Price, u.DeliveryDays, u.IsActive, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteUpgrade(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM memorial_upgrades WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
