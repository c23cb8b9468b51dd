package quotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okean-yachts/okean-cpq/internal/platform/db"
)

var ErrNotFound = errors.New("quotation not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Quotation, error)
	GetByNumber(ctx context.Context, number string) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) error
	Update(ctx context.Context, q Quotation) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status QuotationStatus) error
	UpdateTotals(ctx context.Context, id uuid.UUID, customizationsTotal, finalPrice float64, totalDeliveryDays int) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
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

const quotationColumns = `id, number, model_id, client_name, client_email, client_phone,
	base_price, options_total, upgrades_total, customizations_total,
	base_discount_percentage, options_discount_percentage, final_price,
	base_delivery_days, total_delivery_days, status,
	selected_options, selected_upgrades, valid_until, notes,
	created_by, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var options, upgrades []byte
	err := row.Scan(&q.ID, &q.Number, &q.ModelID, &q.ClientName, &q.ClientEmail, &q.ClientPhone,
		&q.BasePrice, &q.OptionsTotal, &q.UpgradesTotal, &q.CustomizationsTotal,
		&q.BaseDiscountPct, &q.OptionsDiscountPct, &q.FinalPrice,
		&q.BaseDeliveryDays, &q.TotalDeliveryDays, &q.Status,
		&options, &upgrades, &q.ValidUntil, &q.Notes,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(options, &q.SelectedOptions); err != nil {
		return nil, fmt.Errorf("decode selected options: %w", err)
	}
	if err := json.Unmarshal(upgrades, &q.SelectedUpgrades); err != nil {
		return nil, fmt.Errorf("decode selected upgrades: %w", err)
	}
	return &q, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	return scanQuotation(r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id))
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	return scanQuotation(r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE number = $1`, number))
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM quotations WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.Status != nil {
		argCount++
		cond := ` AND status = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *req.Status)
	}
	if req.Search != "" {
		argCount++
		cond := ` AND (number ILIKE $` + strconv.Itoa(argCount) + ` OR client_name ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC`
	if req.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, req.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, req.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) error {
	options, err := json.Marshal(q.SelectedOptions)
	if err != nil {
		return fmt.Errorf("encode selected options: %w", err)
	}
	upgrades, err := json.Marshal(q.SelectedUpgrades)
	if err != nil {
		return fmt.Errorf("encode selected upgrades: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO quotations (id, number, model_id, client_name, client_email, client_phone,
			base_price, options_total, upgrades_total, customizations_total,
			base_discount_percentage, options_discount_percentage, final_price,
			base_delivery_days, total_delivery_days, status,
			selected_options, selected_upgrades, valid_until, notes,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $22)`,
		q.ID, q.Number, q.ModelID, q.ClientName, q.ClientEmail, q.ClientPhone,
		q.BasePrice, q.OptionsTotal, q.UpgradesTotal, q.CustomizationsTotal,
		q.BaseDiscountPct, q.OptionsDiscountPct, q.FinalPrice,
		q.BaseDeliveryDays, q.TotalDeliveryDays, q.Status,
		options, upgrades, q.ValidUntil, q.Notes,
		q.CreatedBy, q.CreatedAt)
	return err
}

func (r *repository) Update(ctx context.Context, q Quotation) error {
	options, err := json.Marshal(q.SelectedOptions)
	if err != nil {
		return fmt.Errorf("encode selected options: %w", err)
	}
	upgrades, err := json.Marshal(q.SelectedUpgrades)
	if err != nil {
		return fmt.Errorf("encode selected upgrades: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET client_name = $2, client_email = $3, client_phone = $4,
			base_price = $5, options_total = $6, upgrades_total = $7, customizations_total = $8,
			base_discount_percentage = $9, options_discount_percentage = $10, final_price = $11,
			base_delivery_days = $12, total_delivery_days = $13, status = $14,
			selected_options = $15, selected_upgrades = $16, valid_until = $17, notes = $18,
			updated_at = $19
		WHERE id = $1`,
		q.ID, q.ClientName, q.ClientEmail, q.ClientPhone,
		q.BasePrice, q.OptionsTotal, q.UpgradesTotal, q.CustomizationsTotal,
		q.BaseDiscountPct, q.OptionsDiscountPct, q.FinalPrice,
		q.BaseDeliveryDays, q.TotalDeliveryDays, q.Status,
		options, upgrades, q.ValidUntil, q.Notes, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status QuotationStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE quotations SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateTotals(ctx context.Context, id uuid.UUID, customizationsTotal, finalPrice float64, totalDeliveryDays int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quotations SET customizations_total = $2, final_price = $3, total_delivery_days = $4, updated_at = $5 WHERE id = $1`,
		id, customizationsTotal, finalPrice, totalDeliveryDays, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "QT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}
