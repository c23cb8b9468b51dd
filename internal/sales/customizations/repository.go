package customizations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okean-yachts/okean-cpq/internal/platform/db"
)

var ErrNotFound = errors.New("customization not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Customization, error)
	ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Customization, error)
	ListActiveByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Customization, error)
	Create(ctx context.Context, c Customization) error
	Update(ctx context.Context, c Customization) error

	ListSteps(ctx context.Context, customizationID uuid.UUID) ([]WorkflowStep, error)
	CreateStep(ctx context.Context, step WorkflowStep) error
	CompleteStep(ctx context.Context, customizationID uuid.UUID, stepType StepType, response map[string]any) error
	MarkPendingStepsRejected(ctx context.Context, customizationID uuid.UUID) error

	FirstUserWithRole(ctx context.Context, role string) (*int64, error)
	ConfigValue(ctx context.Context, key string) (map[string]any, error)
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

const customizationColumns = `id, quotation_id, name, description, status, workflow_status,
	pm_scope, engineering_hours, required_parts,
	supply_items, supply_cost, supply_lead_time_days, supply_notes,
	planning_window_start, planning_delivery_impact_days, planning_notes,
	pm_final_price, pm_final_delivery_impact_days, pm_final_notes, technical_cost,
	additional_cost, delivery_impact_days,
	reject_reason, reviewed_by, reviewed_at, created_by, created_at, updated_at`

func scanCustomization(row pgx.Row) (*Customization, error) {
	var (
		c             Customization
		requiredParts []byte
		supplyItems   []byte
	)
	err := row.Scan(
		&c.ID, &c.QuotationID, &c.Name, &c.Description, &c.Status, &c.Workflow,
		&c.PMScope, &c.EngineeringHours, &requiredParts,
		&supplyItems, &c.SupplyCost, &c.SupplyLeadTimeDays, &c.SupplyNotes,
		&c.PlanningWindowStart, &c.PlanningDeliveryImpactDays, &c.PlanningNotes,
		&c.PMFinalPrice, &c.PMFinalDeliveryImpactDays, &c.PMFinalNotes, &c.TechnicalCost,
		&c.AdditionalCost, &c.DeliveryImpactDays,
		&c.RejectReason, &c.ReviewedBy, &c.ReviewedAt, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan customization: %w", err)
	}
	if len(requiredParts) > 0 {
		if err := json.Unmarshal(requiredParts, &c.RequiredParts); err != nil {
			return nil, fmt.Errorf("decode required_parts: %w", err)
		}
	}
	if len(supplyItems) > 0 {
		if err := json.Unmarshal(supplyItems, &c.SupplyItems); err != nil {
			return nil, fmt.Errorf("decode supply_items: %w", err)
		}
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Customization, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customizationColumns+` FROM quotation_customizations WHERE id = $1`, id)
	return scanCustomization(row)
}

func (r *repository) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Customization, error) {
	return r.list(ctx, `SELECT `+customizationColumns+`
		FROM quotation_customizations WHERE quotation_id = $1 ORDER BY created_at`, quotationID)
}

func (r *repository) ListActiveByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Customization, error) {
	return r.list(ctx, `SELECT `+customizationColumns+`
		FROM quotation_customizations
		WHERE quotation_id = $1 AND status IN ('approved', 'pending')
		ORDER BY created_at`, quotationID)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Customization, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customizations: %w", err)
	}
	defer rows.Close()

	var out []Customization
	for rows.Next() {
		c, err := scanCustomization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customization) error {
	requiredParts, err := json.Marshal(c.RequiredParts)
	if err != nil {
		return fmt.Errorf("encode required_parts: %w", err)
	}
	supplyItems, err := json.Marshal(c.SupplyItems)
	if err != nil {
		return fmt.Errorf("encode supply_items: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO quotation_customizations (
			id, quotation_id, name, description, status, workflow_status,
			pm_scope, engineering_hours, required_parts,
			supply_items, supply_cost, supply_lead_time_days, supply_notes,
			planning_window_start, planning_delivery_impact_days, planning_notes,
			pm_final_price, pm_final_delivery_impact_days, pm_final_notes, technical_cost,
			additional_cost, delivery_impact_days,
			reject_reason, reviewed_by, reviewed_at, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19, $20,
			$21, $22,
			$23, $24, $25, $26, NOW(), NOW()
		)`,
		c.ID, c.QuotationID, c.Name, c.Description, c.Status, c.Workflow,
		c.PMScope, c.EngineeringHours, requiredParts,
		supplyItems, c.SupplyCost, c.SupplyLeadTimeDays, c.SupplyNotes,
		c.PlanningWindowStart, c.PlanningDeliveryImpactDays, c.PlanningNotes,
		c.PMFinalPrice, c.PMFinalDeliveryImpactDays, c.PMFinalNotes, c.TechnicalCost,
		c.AdditionalCost, c.DeliveryImpactDays,
		c.RejectReason, c.ReviewedBy, c.ReviewedAt, c.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert customization: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c Customization) error {
	requiredParts, err := json.Marshal(c.RequiredParts)
	if err != nil {
		return fmt.Errorf("encode required_parts: %w", err)
	}
	supplyItems, err := json.Marshal(c.SupplyItems)
	if err != nil {
		return fmt.Errorf("encode supply_items: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE quotation_customizations SET
			name = $2, description = $3, status = $4, workflow_status = $5,
			pm_scope = $6, engineering_hours = $7, required_parts = $8,
			supply_items = $9, supply_cost = $10, supply_lead_time_days = $11, supply_notes = $12,
			planning_window_start = $13, planning_delivery_impact_days = $14, planning_notes = $15,
			pm_final_price = $16, pm_final_delivery_impact_days = $17, pm_final_notes = $18, technical_cost = $19,
			additional_cost = $20, delivery_impact_days = $21,
			reject_reason = $22, reviewed_by = $23, reviewed_at = $24, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Status, c.Workflow,
		c.PMScope, c.EngineeringHours, requiredParts,
		supplyItems, c.SupplyCost, c.SupplyLeadTimeDays, c.SupplyNotes,
		c.PlanningWindowStart, c.PlanningDeliveryImpactDays, c.PlanningNotes,
		c.PMFinalPrice, c.PMFinalDeliveryImpactDays, c.PMFinalNotes, c.TechnicalCost,
		c.AdditionalCost, c.DeliveryImpactDays,
		c.RejectReason, c.ReviewedBy, c.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("update customization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListSteps(ctx context.Context, customizationID uuid.UUID) ([]WorkflowStep, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, customization_id, step_type, status, assigned_to, response_data, created_at, completed_at
		FROM customization_workflow_steps
		WHERE customization_id = $1
		ORDER BY created_at`, customizationID)
	if err != nil {
		return nil, fmt.Errorf("list workflow steps: %w", err)
	}
	defer rows.Close()

	var out []WorkflowStep
	for rows.Next() {
		var (
			s        WorkflowStep
			response []byte
		)
		if err := rows.Scan(&s.ID, &s.CustomizationID, &s.StepType, &s.Status, &s.AssignedTo, &response, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan workflow step: %w", err)
		}
		if len(response) > 0 {
			if err := json.Unmarshal(response, &s.ResponseData); err != nil {
				return nil, fmt.Errorf("decode response_data: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) CreateStep(ctx context.Context, step WorkflowStep) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customization_workflow_steps (id, customization_id, step_type, status, assigned_to, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		step.ID, step.CustomizationID, step.StepType, step.Status, step.AssignedTo,
	)
	if err != nil {
		return fmt.Errorf("insert workflow step: %w", err)
	}
	return nil
}

func (r *repository) CompleteStep(ctx context.Context, customizationID uuid.UUID, stepType StepType, response map[string]any) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("encode response_data: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		UPDATE customization_workflow_steps
		SET status = 'completed', response_data = $3, completed_at = NOW()
		WHERE customization_id = $1 AND step_type = $2 AND status = 'pending'`,
		customizationID, stepType, payload,
	)
	if err != nil {
		return fmt.Errorf("complete workflow step: %w", err)
	}
	return nil
}

func (r *repository) MarkPendingStepsRejected(ctx context.Context, customizationID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE customization_workflow_steps
		SET status = 'rejected'
		WHERE customization_id = $1 AND status = 'pending'`, customizationID)
	if err != nil {
		return fmt.Errorf("reject workflow steps: %w", err)
	}
	return nil
}

func (r *repository) FirstUserWithRole(ctx context.Context, role string) (*int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx, `
		SELECT ur.user_id
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE r.name = $1
		ORDER BY ur.user_id
		LIMIT 1`, role).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup role %s: %w", role, err)
	}
	return &userID, nil
}

func (r *repository) ConfigValue(ctx context.Context, key string) (map[string]any, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT config_value FROM workflow_config WHERE config_key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load workflow config %s: %w", key, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode workflow config %s: %w", key, err)
	}
	return out, nil
}
