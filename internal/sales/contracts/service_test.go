package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okean-yachts/okean-cpq/internal/catalog/hulls"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
)

type mockRepo struct {
	store   map[uuid.UUID]Contract
	nextNum string
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: map[uuid.UUID]Contract{}, nextNum: "CT-2608-0001"}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := c
	return &out, nil
}

func (m *mockRepo) GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*Contract, error) {
	for _, c := range m.store {
		if c.QuotationID == quotationID {
			out := c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, req ListRequest) ([]Contract, int, error) {
	out := make([]Contract, 0, len(m.store))
	for _, c := range m.store {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockRepo) Create(ctx context.Context, c Contract) error {
	m.store[c.ID] = c
	return nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status ContractStatus) error {
	c, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	m.store[id] = c
	return nil
}

func (m *mockRepo) GenerateNumber(ctx context.Context, _ time.Time) (string, error) {
	return m.nextNum, nil
}

type mockQuotationRepo struct {
	quotations.Repository
	store    map[uuid.UUID]quotations.Quotation
	statuses map[uuid.UUID]quotations.QuotationStatus
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

type mockHulls struct {
	hull     hulls.Hull
	assigned []uuid.UUID
}

func (m *mockHulls) Get(ctx context.Context, id uuid.UUID) (hulls.Hull, error) {
	return m.hull, nil
}

func (m *mockHulls) Assign(ctx context.Context, id uuid.UUID) error {
	m.assigned = append(m.assigned, id)
	return nil
}

func acceptedQuotation() quotations.Quotation {
	return quotations.Quotation{
		ID:                uuid.New(),
		Number:            "QT-2608-0007",
		ModelID:           uuid.New(),
		ClientName:        "Marina Albuquerque",
		ClientEmail:       "marina@example.com",
		BasePrice:         700000,
		FinalPrice:        812500,
		BaseDeliveryDays:  180,
		TotalDeliveryDays: 225,
		Status:            quotations.StatusAccepted,
		SelectedOptions: []quotations.OptionSelection{
			{OptionID: uuid.New(), Name: "Plataforma hidraulica", Price: 95000, DeliveryDays: 45},
		},
		SelectedUpgrades: []quotations.UpgradeSelection{
			{UpgradeID: uuid.New(), MemorialItemID: uuid.New(), Name: "Hardtop fixo", Price: 80000, DeliveryDays: 30},
		},
	}
}

func TestConvertFromQuotationSnapshot(t *testing.T) {
	repo := newMockRepo()
	q := acceptedQuotation()
	qrepo := &mockQuotationRepo{
		store:    map[uuid.UUID]quotations.Quotation{q.ID: q},
		statuses: map[uuid.UUID]quotations.QuotationStatus{},
	}
	svc := NewService(repo, qrepo, &mockHulls{}, nil)

	contract, err := svc.ConvertFromQuotation(context.Background(), ConvertRequest{QuotationID: q.ID}, 7)
	require.NoError(t, err)

	assert.Equal(t, "CT-2608-0001", contract.Number)
	assert.Equal(t, ContractStatusActive, contract.Status)
	assert.Equal(t, q.FinalPrice, contract.FinalPrice)
	assert.Equal(t, q.TotalDeliveryDays, contract.DeliveryDays)
	require.Len(t, contract.BaseSnapshot.SelectedUpgrades, 1)
	assert.Equal(t, q.SelectedUpgrades[0].MemorialItemID, contract.BaseSnapshot.SelectedUpgrades[0].MemorialItemID)
	require.Len(t, contract.BaseSnapshot.SelectedOptions, 1)
	assert.Equal(t, 95000.0, contract.BaseSnapshot.SelectedOptions[0].Price)
	assert.NotNil(t, contract.SignedAt)

	assert.Equal(t, quotations.StatusConverted, qrepo.statuses[q.ID])
}

func TestConvertRequiresAcceptedStatus(t *testing.T) {
	repo := newMockRepo()
	q := acceptedQuotation()
	q.Status = quotations.StatusSent
	qrepo := &mockQuotationRepo{
		store:    map[uuid.UUID]quotations.Quotation{q.ID: q},
		statuses: map[uuid.UUID]quotations.QuotationStatus{},
	}
	svc := NewService(repo, qrepo, &mockHulls{}, nil)

	_, err := svc.ConvertFromQuotation(context.Background(), ConvertRequest{QuotationID: q.ID}, 7)
	assert.ErrorIs(t, err, ErrNotConvertible)
}

func TestConvertRejectsDoubleConversion(t *testing.T) {
	repo := newMockRepo()
	q := acceptedQuotation()
	qrepo := &mockQuotationRepo{
		store:    map[uuid.UUID]quotations.Quotation{q.ID: q},
		statuses: map[uuid.UUID]quotations.QuotationStatus{},
	}
	svc := NewService(repo, qrepo, &mockHulls{}, nil)

	_, err := svc.ConvertFromQuotation(context.Background(), ConvertRequest{QuotationID: q.ID}, 7)
	require.NoError(t, err)

	q.Status = quotations.StatusAccepted
	qrepo.store[q.ID] = q
	_, err = svc.ConvertFromQuotation(context.Background(), ConvertRequest{QuotationID: q.ID}, 7)
	assert.ErrorIs(t, err, ErrAlreadyConverted)
}

func TestConvertAssignsHull(t *testing.T) {
	repo := newMockRepo()
	q := acceptedQuotation()
	qrepo := &mockQuotationRepo{
		store:    map[uuid.UUID]quotations.Quotation{q.ID: q},
		statuses: map[uuid.UUID]quotations.QuotationStatus{},
	}
	hullID := uuid.New()
	hullSvc := &mockHulls{hull: hulls.Hull{ID: hullID, ModelID: q.ModelID, Number: "OK50-014"}}
	svc := NewService(repo, qrepo, hullSvc, nil)

	contract, err := svc.ConvertFromQuotation(context.Background(), ConvertRequest{QuotationID: q.ID, HullID: &hullID}, 7)
	require.NoError(t, err)
	assert.Equal(t, "OK50-014", contract.HullNumber)
	assert.Equal(t, []uuid.UUID{hullID}, hullSvc.assigned)
}

func TestConvertRejectsHullFromOtherModel(t *testing.T) {
	repo := newMockRepo()
	q := acceptedQuotation()
	qrepo := &mockQuotationRepo{
		store:    map[uuid.UUID]quotations.Quotation{q.ID: q},
		statuses: map[uuid.UUID]quotations.QuotationStatus{},
	}
	hullID := uuid.New()
	hullSvc := &mockHulls{hull: hulls.Hull{ID: hullID, ModelID: uuid.New(), Number: "OK62-003"}}
	svc := NewService(repo, qrepo, hullSvc, nil)

	_, err := svc.ConvertFromQuotation(context.Background(), ConvertRequest{QuotationID: q.ID, HullID: &hullID}, 7)
	require.Error(t, err)
	assert.Empty(t, hullSvc.assigned)
}
