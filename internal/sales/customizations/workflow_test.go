package customizations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/sales/approvals"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
)

type mockRepo struct {
	store    map[uuid.UUID]Customization
	steps    []WorkflowStep
	rejected []uuid.UUID
	config   map[string]map[string]any
	users    map[string]int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		store:  map[uuid.UUID]Customization{},
		config: map[string]map[string]any{},
		users:  map[string]int64{"pm_engenharia": 10, "comprador": 11, "planejador": 12},
	}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*Customization, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := c
	return &out, nil
}

func (m *mockRepo) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Customization, error) {
	var out []Customization
	for _, c := range m.store {
		if c.QuotationID == quotationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) ListActiveByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Customization, error) {
	var out []Customization
	for _, c := range m.store {
		if c.QuotationID == quotationID && (c.Status == StatusApproved || c.Status == StatusPending) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) Create(ctx context.Context, c Customization) error {
	m.store[c.ID] = c
	return nil
}

func (m *mockRepo) Update(ctx context.Context, c Customization) error {
	if _, ok := m.store[c.ID]; !ok {
		return ErrNotFound
	}
	m.store[c.ID] = c
	return nil
}

func (m *mockRepo) ListSteps(ctx context.Context, customizationID uuid.UUID) ([]WorkflowStep, error) {
	var out []WorkflowStep
	for _, s := range m.steps {
		if s.CustomizationID == customizationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRepo) CreateStep(ctx context.Context, step WorkflowStep) error {
	m.steps = append(m.steps, step)
	return nil
}

func (m *mockRepo) CompleteStep(ctx context.Context, customizationID uuid.UUID, stepType StepType, response map[string]any) error {
	for i, s := range m.steps {
		if s.CustomizationID == customizationID && s.StepType == stepType && s.Status == StepStatusPending {
			m.steps[i].Status = StepStatusCompleted
			m.steps[i].ResponseData = response
		}
	}
	return nil
}

func (m *mockRepo) MarkPendingStepsRejected(ctx context.Context, customizationID uuid.UUID) error {
	m.rejected = append(m.rejected, customizationID)
	for i, s := range m.steps {
		if s.CustomizationID == customizationID && s.Status == StepStatusPending {
			m.steps[i].Status = StepStatusRejected
		}
	}
	return nil
}

func (m *mockRepo) FirstUserWithRole(ctx context.Context, role string) (*int64, error) {
	id, ok := m.users[role]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (m *mockRepo) ConfigValue(ctx context.Context, key string) (map[string]any, error) {
	return m.config[key], nil
}

type mockQuotationRepo struct {
	quotations.Repository
	store    map[uuid.UUID]quotations.Quotation
	statuses map[uuid.UUID]quotations.QuotationStatus
	totals   map[uuid.UUID][3]float64
}

func newMockQuotationRepo(q quotations.Quotation) *mockQuotationRepo {
	return &mockQuotationRepo{
		store:    map[uuid.UUID]quotations.Quotation{q.ID: q},
		statuses: map[uuid.UUID]quotations.QuotationStatus{},
		totals:   map[uuid.UUID][3]float64{},
	}
}

func (m *mockQuotationRepo) Get(ctx context.Context, id uuid.UUID) (*quotations.Quotation, error) {
	q, ok := m.store[id]
	if !ok {
		return nil, quotations.ErrNotFound
	}
	out := q
	return &out, nil
}

func (m *mockQuotationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status quotations.QuotationStatus) error {
	m.statuses[id] = status
	return nil
}

func (m *mockQuotationRepo) UpdateTotals(ctx context.Context, id uuid.UUID, customizationsTotal, finalPrice float64, totalDeliveryDays int) error {
	m.totals[id] = [3]float64{customizationsTotal, finalPrice, float64(totalDeliveryDays)}
	return nil
}

type mockApprovals struct {
	created []approvals.CreateApprovalRequest
}

func (m *mockApprovals) Create(ctx context.Context, req approvals.CreateApprovalRequest, requestedBy int64) (*approvals.Approval, error) {
	m.created = append(m.created, req)
	return &approvals.Approval{ID: uuid.New(), QuotationID: req.QuotationID, Type: req.Type}, nil
}

type staticLimits struct{ set policy.LimitSet }

func (s staticLimits) Current() policy.LimitSet { return s.set }

type staticCustLimits struct{ limits policy.Limits }

func (s staticCustLimits) CustomizationLimits(ctx context.Context) policy.Limits { return s.limits }

func testQuotation() quotations.Quotation {
	return quotations.Quotation{
		ID:                 uuid.New(),
		Number:             "QT-2608-0003",
		ModelID:            uuid.New(),
		BasePrice:          700000,
		OptionsTotal:       95000,
		UpgradesTotal:      80000,
		BaseDiscountPct:    5,
		OptionsDiscountPct: 0,
		BaseDeliveryDays:   180,
		Status:             quotations.StatusDraft,
	}
}

func newTestService(repo *mockRepo, qrepo *mockQuotationRepo, approvalSvc *mockApprovals) *Service {
	provider := staticLimits{set: policy.LimitSet{
		Base:    policy.Limits{NoApprovalMax: 10, DirectorApprovalMax: 15, AdminApprovalAbove: 15},
		Options: policy.Limits{NoApprovalMax: 8, DirectorApprovalMax: 12, AdminApprovalAbove: 12},
	}}
	return NewService(repo, qrepo, approvalSvc, provider, staticCustLimits{limits: policy.Limits{
		NoApprovalMax: 0, DirectorApprovalMax: 0, AdminApprovalAbove: 100000,
	}}, nil)
}

func advance(t *testing.T, svc *Service, id uuid.UUID, step StepType, data StepData) *AdvanceResult {
	t.Helper()
	result, err := svc.Advance(context.Background(), id, AdvanceRequest{Step: step, Action: ActionAdvance, Data: data}, 42)
	require.NoError(t, err)
	return result
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func TestWorkflowFullChain(t *testing.T) {
	repo := newMockRepo()
	q := testQuotation()
	qrepo := newMockQuotationRepo(q)
	approvalSvc := &mockApprovals{}
	svc := newTestService(repo, qrepo, approvalSvc)

	c, err := svc.Create(context.Background(), CreateCustomizationRequest{
		QuotationID: q.ID,
		Name:        "Adega climatizada",
		Description: "Adega para 24 garrafas no salao principal",
	}, 42)
	require.NoError(t, err)
	assert.Equal(t, WorkflowPendingPMInitial, c.Workflow)
	require.Len(t, repo.steps, 1)
	assert.Equal(t, StepPMInitial, repo.steps[0].StepType)
	require.NotNil(t, repo.steps[0].AssignedTo)
	assert.Equal(t, int64(10), *repo.steps[0].AssignedTo)

	result := advance(t, svc, c.ID, StepPMInitial, StepData{
		PMScope:          strPtr("Marcenaria e eletrica dedicada"),
		EngineeringHours: floatPtr(20),
	})
	assert.Equal(t, WorkflowPendingSupplyQuote, result.Status)

	result = advance(t, svc, c.ID, StepSupplyQuote, StepData{
		SupplyItems: []SupplyItem{{Name: "Adega 24 garrafas", Quantity: 1, UnitCost: 5000}},
		SupplyCost:  floatPtr(5000),
	})
	assert.Equal(t, WorkflowPendingPlanning, result.Status)

	result = advance(t, svc, c.ID, StepPlanningCheck, StepData{
		PlanningDeliveryImpactDays: intPtr(15),
	})
	assert.Equal(t, WorkflowPendingPMFinal, result.Status)

	result = advance(t, svc, c.ID, StepPMFinal, StepData{
		PMFinalPrice:              floatPtr(25000),
		PMFinalDeliveryImpactDays: intPtr(20),
	})
	assert.Equal(t, WorkflowApproved, result.Status)
	assert.False(t, result.NeedsCommercialApproval)
	assert.Empty(t, approvalSvc.created)
	assert.Equal(t, quotations.StatusReadyToSend, qrepo.statuses[q.ID])

	stored, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
	// (5000 supply + 20h * 150) * 1.10 contingency
	assert.InDelta(t, 8800, stored.TechnicalCost, 0.01)
	assert.Equal(t, 25000.0, stored.AdditionalCost)

	totals := qrepo.totals[q.ID]
	assert.Equal(t, 25000.0, totals[0])
	// 700000*0.95 + 175000 + 25000
	assert.InDelta(t, 865000, totals[1], 0.01)
	assert.Equal(t, 200.0, totals[2])

	steps, err := svc.Steps(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	for _, step := range steps {
		assert.Equal(t, StepStatusCompleted, step.Status)
	}
}

func TestWorkflowTriggersCommercialApproval(t *testing.T) {
	repo := newMockRepo()
	q := testQuotation()
	q.BaseDiscountPct = 12
	qrepo := newMockQuotationRepo(q)
	approvalSvc := &mockApprovals{}
	svc := newTestService(repo, qrepo, approvalSvc)

	c, err := svc.Create(context.Background(), CreateCustomizationRequest{QuotationID: q.ID, Name: "Teto solar"}, 42)
	require.NoError(t, err)
	advance(t, svc, c.ID, StepPMInitial, StepData{PMScope: strPtr("Corte estrutural"), EngineeringHours: floatPtr(60)})
	advance(t, svc, c.ID, StepSupplyQuote, StepData{SupplyItems: []SupplyItem{{Name: "Vidro", Quantity: 1, UnitCost: 30000}}, SupplyCost: floatPtr(30000)})
	advance(t, svc, c.ID, StepPlanningCheck, StepData{PlanningDeliveryImpactDays: intPtr(30)})

	result := advance(t, svc, c.ID, StepPMFinal, StepData{PMFinalPrice: floatPtr(60000), PMFinalDeliveryImpactDays: intPtr(30)})
	assert.True(t, result.NeedsCommercialApproval)
	require.Len(t, approvalSvc.created, 1)
	assert.Equal(t, approvals.TypeCommercial, approvalSvc.created[0].Type)
	assert.NotEqual(t, quotations.StatusReadyToSend, qrepo.statuses[q.ID])
}

func TestWorkflowTriggersCustomizationApproval(t *testing.T) {
	repo := newMockRepo()
	q := testQuotation()
	qrepo := newMockQuotationRepo(q)
	approvalSvc := &mockApprovals{}
	svc := newTestService(repo, qrepo, approvalSvc)

	c, err := svc.Create(context.Background(), CreateCustomizationRequest{QuotationID: q.ID, Name: "Heliponto"}, 42)
	require.NoError(t, err)
	advance(t, svc, c.ID, StepPMInitial, StepData{PMScope: strPtr("Reforco estrutural de popa"), EngineeringHours: floatPtr(400)})
	advance(t, svc, c.ID, StepSupplyQuote, StepData{SupplyItems: []SupplyItem{{Name: "Plataforma", Quantity: 1, UnitCost: 90000}}, SupplyCost: floatPtr(90000)})
	advance(t, svc, c.ID, StepPlanningCheck, StepData{PlanningDeliveryImpactDays: intPtr(60)})

	result := advance(t, svc, c.ID, StepPMFinal, StepData{PMFinalPrice: floatPtr(180000), PMFinalDeliveryImpactDays: intPtr(60)})
	assert.Equal(t, WorkflowApproved, result.Status)
	require.Len(t, approvalSvc.created, 1)
	assert.Equal(t, approvals.TypeCustomization, approvalSvc.created[0].Type)
}

func TestWorkflowRejectsStepMismatch(t *testing.T) {
	repo := newMockRepo()
	q := testQuotation()
	qrepo := newMockQuotationRepo(q)
	svc := newTestService(repo, qrepo, &mockApprovals{})

	c, err := svc.Create(context.Background(), CreateCustomizationRequest{QuotationID: q.ID, Name: "Passarela"}, 42)
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), c.ID, AdvanceRequest{
		Step: StepSupplyQuote, Action: ActionAdvance,
		Data: StepData{SupplyCost: floatPtr(100)},
	}, 42)
	assert.ErrorIs(t, err, httpx.ErrInvalidStatus)
}

func TestWorkflowRejectRequiresReason(t *testing.T) {
	repo := newMockRepo()
	q := testQuotation()
	qrepo := newMockQuotationRepo(q)
	svc := newTestService(repo, qrepo, &mockApprovals{})

	c, err := svc.Create(context.Background(), CreateCustomizationRequest{QuotationID: q.ID, Name: "Mastro de radar"}, 42)
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), c.ID, AdvanceRequest{Step: StepPMInitial, Action: ActionReject}, 42)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	result, err := svc.Advance(context.Background(), c.ID, AdvanceRequest{
		Step: StepPMInitial, Action: ActionReject,
		Data: StepData{RejectReason: strPtr("Inviavel estruturalmente")},
	}, 42)
	require.NoError(t, err)
	assert.Equal(t, WorkflowRejected, result.Status)

	stored, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, stored.Status)
	require.Len(t, repo.steps, 1)
	assert.Equal(t, StepStatusRejected, repo.steps[0].Status)
}

func TestWorkflowPMInitialValidation(t *testing.T) {
	repo := newMockRepo()
	q := testQuotation()
	qrepo := newMockQuotationRepo(q)
	svc := newTestService(repo, qrepo, &mockApprovals{})

	c, err := svc.Create(context.Background(), CreateCustomizationRequest{QuotationID: q.ID, Name: "Som ambiente"}, 42)
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), c.ID, AdvanceRequest{
		Step: StepPMInitial, Action: ActionAdvance,
		Data: StepData{EngineeringHours: floatPtr(5)},
	}, 42)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
