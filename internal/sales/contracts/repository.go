package contracts

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

var ErrNotFound = errors.New("contract not found")

type ListRequest struct {
	Status *ContractStatus
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Contract, error)
	GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*Contract, error)
	List(ctx context.Context, req ListRequest) ([]Contract, int, error)
	Create(ctx context.Context, c Contract) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status ContractStatus) error
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

const contractColumns = `id, number, quotation_id, model_id, client_name, client_email, hull_id, hull_number, status, final_price, delivery_days, base_snapshot, signed_at, created_by, created_at, updated_at`

func (r *repository) scan(row pgx.Row) (*Contract, error) {
	var c Contract
	var snapshot []byte
	err := row.Scan(&c.ID, &c.Number, &c.QuotationID, &c.ModelID, &c.ClientName, &c.ClientEmail,
		&c.HullID, &c.HullNumber, &c.Status, &c.FinalPrice, &c.DeliveryDays, &snapshot,
		&c.SignedAt, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &c.BaseSnapshot); err != nil {
		return nil, fmt.Errorf("decode base snapshot: %w", err)
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
}

func (r *repository) GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*Contract, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE quotation_id = $1`, quotationID))
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Contract, int, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM contracts WHERE 1=1`
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
		cond := ` AND (number ILIKE $` + strconv.Itoa(argCount) + ` OR client_name ILIKE $` + strconv.Itoa(argCount) + ` OR hull_number ILIKE $` + strconv.Itoa(argCount) + `)`
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

	var out []Contract
	for rows.Next() {
		var c Contract
		var snapshot []byte
		if err := rows.Scan(&c.ID, &c.Number, &c.QuotationID, &c.ModelID, &c.ClientName, &c.ClientEmail,
			&c.HullID, &c.HullNumber, &c.Status, &c.FinalPrice, &c.DeliveryDays, &snapshot,
			&c.SignedAt, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(snapshot, &c.BaseSnapshot); err != nil {
			return nil, 0, fmt.Errorf("decode base snapshot: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Contract) error {
	snapshot, err := json.Marshal(c.BaseSnapshot)
	if err != nil {
		return fmt.Errorf("encode base snapshot: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO contracts (id, number, quotation_id, model_id, client_name, client_email, hull_id, hull_number, status, final_price, delivery_days, base_snapshot, signed_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`,
		c.ID, c.Number, c.QuotationID, c.ModelID, c.ClientName, c.ClientEmail, c.HullID, c.HullNumber,
		c.Status, c.FinalPrice, c.DeliveryDays, snapshot, c.SignedAt, c.CreatedBy, c.CreatedAt)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status ContractStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE contracts SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
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
	`, "CT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CT-%s-%04d", date.Format("0601"), seq), nil
}
