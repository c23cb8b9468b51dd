package approvals

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

var (
	ErrNotFound        = errors.New("approval not found")
	ErrAlreadyReviewed = errors.New("approval already reviewed")
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Approval, error)
	Create(ctx context.Context, a Approval) error
	ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Approval, error)
	ListPending(ctx context.Context) ([]Approval, error)
	CountPending(ctx context.Context, quotationID uuid.UUID) (int, error)
	CountAllPending(ctx context.Context) (int, error)
	MarkReviewed(ctx context.Context, id uuid.UUID, status ApprovalStatus, reviewedBy int64, reviewNotes *string) error
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

const approvalColumns = `id, quotation_id, approval_type, status, requested_by, requested_at, reviewed_by, reviewed_at, request_details, notes, review_notes`

func scanApproval(row pgx.Row) (*Approval, error) {
	var a Approval
	var details []byte
	err := row.Scan(&a.ID, &a.QuotationID, &a.Type, &a.Status, &a.RequestedBy, &a.RequestedAt,
		&a.ReviewedBy, &a.ReviewedAt, &details, &a.Notes, &a.ReviewNotes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.RequestDetails); err != nil {
			return nil, fmt.Errorf("decode request details: %w", err)
		}
	}
	return &a, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Approval, error) {
	return scanApproval(r.db.QueryRow(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, a Approval) error {
	details, err := json.Marshal(a.RequestDetails)
	if err != nil {
		return fmt.Errorf("encode request details: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO approvals (id, quotation_id, approval_type, status, requested_by, requested_at, request_details, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.QuotationID, a.Type, a.Status, a.RequestedBy, a.RequestedAt, details, a.Notes)
	return err
}

func (r *repository) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Approval, error) {
	rows, err := r.db.Query(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE quotation_id = $1 ORDER BY requested_at`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) ListPending(ctx context.Context) ([]Approval, error) {
	rows, err := r.db.Query(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE status = 'pending' ORDER BY requested_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Approval, error) {
	var out []Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *repository) CountPending(ctx context.Context, quotationID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM approvals WHERE quotation_id = $1 AND status = 'pending'`, quotationID).Scan(&n)
	return n, err
}

func (r *repository) CountAllPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM approvals WHERE status = 'pending'`).Scan(&n)
	return n, err
}

func (r *repository) MarkReviewed(ctx context.Context, id uuid.UUID, status ApprovalStatus, reviewedBy int64, reviewNotes *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE approvals SET status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = $5
		WHERE id = $1 AND status = 'pending'`,
		id, status, reviewedBy, time.Now(), reviewNotes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyReviewed
	}
	return nil
}
