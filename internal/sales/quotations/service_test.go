package quotations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okean-yachts/okean-cpq/internal/catalog/memorial"
	"github.com/okean-yachts/okean-cpq/internal/catalog/models"
	"github.com/okean-yachts/okean-cpq/internal/catalog/options"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
)

type staticLimits struct{ set policy.LimitSet }

func (s staticLimits) Current() policy.LimitSet { return s.set }

func testEngine() *policy.Engine {
	return policy.NewEngine(staticLimits{set: policy.LimitSet{
		Base:    policy.Limits{NoApprovalMax: 10, DirectorApprovalMax: 15, AdminApprovalAbove: 15},
		Options: policy.Limits{NoApprovalMax: 8, DirectorApprovalMax: 12, AdminApprovalAbove: 12},
	}})
}

type mockRepo struct {
	store   map[uuid.UUID]Quotation
	nextNum string
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: map[uuid.UUID]Quotation{}, nextNum: "QT-2608-0001"}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	q, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := q
	return &out, nil
}

func (m *mockRepo) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	for _, q := range m.store {
		if q.Number == number {
			out := q
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	var out []Quotation
	for _, q := range m.store {
		out = append(out, q)
	}
	return out, len(out), nil
}

func (m *mockRepo) Create(ctx context.Context, q Quotation) error {
	m.store[q.ID] = q
	return nil
}

func (m *mockRepo) Update(ctx context.Context, q Quotation) error {
	if _, ok := m.store[q.ID]; !ok {
		return ErrNotFound
	}
	m.store[q.ID] = q
	return nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status QuotationStatus) error {
	q, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = status
	m.store[id] = q
	return nil
}

func (m *mockRepo) UpdateTotals(ctx context.Context, id uuid.UUID, customizationsTotal, finalPrice float64, totalDeliveryDays int) error {
	q, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	q.CustomizationsTotal = customizationsTotal
	q.FinalPrice = finalPrice
	q.TotalDeliveryDays = totalDeliveryDays
	m.store[id] = q
	return nil
}

func (m *mockRepo) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	return m.nextNum, nil
}

type mockModelRepo struct {
	models.Repository
	model models.YachtModel
}

func (m *mockModelRepo) Get(ctx context.Context, id uuid.UUID) (models.YachtModel, error) {
	return m.model, nil
}

type mockOptionRepo struct {
	options.Repository
	items map[uuid.UUID]options.Option
}

func (m *mockOptionRepo) Get(ctx context.Context, id uuid.UUID) (options.Option, error) {
	return m.items[id], nil
}

type mockMemorialRepo struct {
	memorial.Repository
	upgrades map[uuid.UUID]memorial.Upgrade
}

func (m *mockMemorialRepo) GetUpgrade(ctx context.Context, id uuid.UUID) (memorial.Upgrade, error) {
	return m.upgrades[id], nil
}

type mockCounter struct{ pending int }

func (m mockCounter) CountPending(ctx context.Context, quotationID uuid.UUID) (int, error) {
	return m.pending, nil
}

type mockDispatcher struct{ sent []uuid.UUID }

func (m *mockDispatcher) EnqueueQuotationSent(ctx context.Context, quotationID uuid.UUID) error {
	m.sent = append(m.sent, quotationID)
	return nil
}

func newTestService(repo *mockRepo, counter ApprovalCounter, dispatcher Dispatcher) *Service {
	optionID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	upgradeID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	memorialItemID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	return NewService(
		repo,
		&mockModelRepo{model: models.YachtModel{ID: uuid.New(), Name: "Okean 50X", BasePrice: 1_000_000, BaseDeliveryDays: 180}},
		&mockOptionRepo{items: map[uuid.UUID]options.Option{
			optionID: {ID: optionID, Name: "Hydraulic platform", Price: 50_000, DeliveryDays: 30},
		}},
		&mockMemorialRepo{upgrades: map[uuid.UUID]memorial.Upgrade{
			upgradeID: {ID: upgradeID, MemorialItemID: memorialItemID, Name: "Teak deck", Price: 20_000, DeliveryDays: 45},
		}},
		testEngine(),
		counter,
		dispatcher,
	)
}

func TestCreateComputesTotals(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	q, validation, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:            uuid.New(),
		ClientName:         "A. Medeiros",
		BaseDiscountPct:    10,
		OptionsDiscountPct: 5,
		Selection: SelectionInput{
			OptionIDs:  []uuid.UUID{uuid.MustParse("11111111-1111-1111-1111-111111111111")},
			UpgradeIDs: []uuid.UUID{uuid.MustParse("22222222-2222-2222-2222-222222222222")},
		},
	}, 7, nil)
	require.NoError(t, err)
	require.True(t, validation.Valid)

	assert.Equal(t, "QT-2608-0001", q.Number)
	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, 50_000.0, q.OptionsTotal)
	assert.Equal(t, 20_000.0, q.UpgradesTotal)
	// 1,000,000 * 0.9 + 70,000 * 0.95
	assert.InDelta(t, 966_500.0, q.FinalPrice, 0.01)
	// base 180 + slowest selection (45), not the sum
	assert.Equal(t, 225, q.TotalDeliveryDays)
}

func TestCreateRejectsDiscountAboveAbsoluteCap(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	_, validation, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:         uuid.New(),
		ClientName:      "A. Medeiros",
		BaseDiscountPct: 31,
	}, 7, nil)
	require.ErrorIs(t, err, ErrDiscountInvalid)
	assert.False(t, validation.Valid)
	assert.NotEmpty(t, validation.Errors)
}

func TestCreateRejectsNegativeDiscount(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	_, _, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:            uuid.New(),
		ClientName:         "A. Medeiros",
		OptionsDiscountPct: -1,
	}, 7, nil)
	require.ErrorIs(t, err, ErrDiscountInvalid)
}

func TestSendBlockedWhilePendingApprovals(t *testing.T) {
	repo := newMockRepo()
	dispatcher := &mockDispatcher{}
	svc := newTestService(repo, mockCounter{pending: 1}, dispatcher)

	q, _, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:    uuid.New(),
		ClientName: "A. Medeiros",
	}, 7, nil)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), q.ID)
	require.ErrorIs(t, err, ErrApprovalRequired)
	assert.Empty(t, dispatcher.sent)
}

func TestSendWithinLimitsDispatchesJobs(t *testing.T) {
	repo := newMockRepo()
	dispatcher := &mockDispatcher{}
	svc := newTestService(repo, mockCounter{}, dispatcher)

	q, _, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:            uuid.New(),
		ClientName:         "A. Medeiros",
		BaseDiscountPct:    5,
		OptionsDiscountPct: 3,
	}, 7, nil)
	require.NoError(t, err)

	sent, err := svc.Send(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, sent.Status)
	assert.Equal(t, []uuid.UUID{q.ID}, dispatcher.sent)
}

func TestSendBlockedWhenDiscountNeedsUnrequestedApproval(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	q, _, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:         uuid.New(),
		ClientName:      "A. Medeiros",
		BaseDiscountPct: 14,
	}, 7, nil)
	require.NoError(t, err)

	state, err := svc.ApprovalState(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, state.RequiresApproval)
	assert.False(t, state.CanSend)
	assert.Equal(t, NextStepAwaitingApprovals, state.NextStep)

	_, err = svc.Send(context.Background(), q.ID)
	require.ErrorIs(t, err, ErrApprovalRequired)
}

func TestApprovalStateReadyToSend(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	q, _, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:         uuid.New(),
		ClientName:      "A. Medeiros",
		BaseDiscountPct: 5,
	}, 7, nil)
	require.NoError(t, err)

	state, err := svc.ApprovalState(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, state.RequiresApproval)
	assert.True(t, state.CanSend)
	assert.Equal(t, NextStepReadyToSend, state.NextStep)
	assert.Zero(t, state.PendingCount)
}

func TestAcceptRequiresSentStatus(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	q, _, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:    uuid.New(),
		ClientName: "A. Medeiros",
	}, 7, nil)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), q.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Send(context.Background(), q.ID)
	require.NoError(t, err)
	accepted, err := svc.Accept(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)
}

func TestCreateAndUpdateReturnQuotationWithValidation(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	q, validation, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:         uuid.New(),
		ClientName:      "A. Medeiros",
		BaseDiscountPct: 12,
	}, 7, nil)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.True(t, validation.Valid)
	assert.NotEmpty(t, validation.Warnings)

	newPct := 14.0
	updated, validation, err := svc.Update(context.Background(), q.ID, UpdateQuotationRequest{
		BaseDiscountPct: &newPct,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 14.0, updated.BaseDiscountPct)
	assert.True(t, validation.Valid)
	assert.NotEmpty(t, validation.Warnings)
}

func TestUpgradeSelectionRejectsSlotConflict(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockCounter{}, &mockDispatcher{})

	upgradeID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	_, _, err := svc.Create(context.Background(), CreateQuotationRequest{
		ModelID:    uuid.New(),
		ClientName: "A. Medeiros",
		Selection:  SelectionInput{UpgradeIDs: []uuid.UUID{upgradeID, upgradeID}},
	}, 7, nil)
	require.Error(t, err)
}
