package approvals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
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
	store map[uuid.UUID]Approval
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: map[uuid.UUID]Approval{}}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*Approval, error) {
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := a
	return &out, nil
}

func (m *mockRepo) Create(ctx context.Context, a Approval) error {
	m.store[a.ID] = a
	return nil
}

func (m *mockRepo) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]Approval, error) {
	var out []Approval
	for _, a := range m.store {
		if a.QuotationID == quotationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListPending(ctx context.Context) ([]Approval, error) {
	var out []Approval
	for _, a := range m.store {
		if a.Status == StatusPending {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) CountPending(ctx context.Context, quotationID uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.store {
		if a.QuotationID == quotationID && a.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) CountAllPending(ctx context.Context) (int, error) {
	n := 0
	for _, a := range m.store {
		if a.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) MarkReviewed(ctx context.Context, id uuid.UUID, status ApprovalStatus, reviewedBy int64, reviewNotes *string) error {
	a, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	now := time.Now()
	a.Status = status
	a.ReviewedBy = &reviewedBy
	a.ReviewedAt = &now
	a.ReviewNotes = reviewNotes
	m.store[id] = a
	return nil
}

type mockQuotationRepo struct {
	quotations.Repository
	store map[uuid.UUID]quotations.Quotation
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
	q, ok := m.store[id]
	if !ok {
		return quotations.ErrNotFound
	}
	q.Status = status
	m.store[id] = q
	return nil
}

func setup(baseDiscount, optionsDiscount float64) (*Service, *mockRepo, *mockQuotationRepo, uuid.UUID) {
	repo := newMockRepo()
	quotationID := uuid.New()
	qRepo := &mockQuotationRepo{store: map[uuid.UUID]quotations.Quotation{
		quotationID: {
			ID:                 quotationID,
			Number:             "QT-2608-0001",
			Status:             quotations.StatusDraft,
			BaseDiscountPct:    baseDiscount,
			OptionsDiscountPct: optionsDiscount,
		},
	}}
	return NewService(repo, qRepo, testEngine(), nil), repo, qRepo, quotationID
}

func TestCreateMovesQuotationToPendingApproval(t *testing.T) {
	svc, _, qRepo, quotationID := setup(12, 0)

	a, err := svc.Create(context.Background(), CreateApprovalRequest{
		QuotationID: quotationID,
		Type:        TypeDiscount,
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, quotations.StatusPendingApproval, qRepo.store[quotationID].Status)
}

func TestCreateCommercialSetsSpecificStatus(t *testing.T) {
	svc, _, qRepo, quotationID := setup(12, 0)

	_, err := svc.Create(context.Background(), CreateApprovalRequest{
		QuotationID: quotationID,
		Type:        TypeCommercial,
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, quotations.StatusPendingCommercialApproval, qRepo.store[quotationID].Status)
}

func TestReviewApproveReturnsQuotationToDraft(t *testing.T) {
	svc, _, qRepo, quotationID := setup(12, 0)

	a, err := svc.Create(context.Background(), CreateApprovalRequest{
		QuotationID: quotationID,
		Type:        TypeDiscount,
	}, 7)
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), a.ID, ReviewRequest{Action: ActionApprove}, 9,
		[]policy.Role{policy.RoleDiretorComercial})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, int64(9), *reviewed.ReviewedBy)
	assert.Equal(t, quotations.StatusDraft, qRepo.store[quotationID].Status)
}

func TestReviewExactlyOnce(t *testing.T) {
	svc, _, _, quotationID := setup(12, 0)

	a, err := svc.Create(context.Background(), CreateApprovalRequest{
		QuotationID: quotationID,
		Type:        TypeDiscount,
	}, 7)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), a.ID, ReviewRequest{Action: ActionApprove}, 9,
		[]policy.Role{policy.RoleAdministrador})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), a.ID, ReviewRequest{Action: ActionReject}, 9,
		[]policy.Role{policy.RoleAdministrador})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestReviewRequiresAuthority(t *testing.T) {
	// 16% base is above the director ceiling, admin only.
	svc, _, _, quotationID := setup(16, 0)

	a, err := svc.Create(context.Background(), CreateApprovalRequest{
		QuotationID: quotationID,
		Type:        TypeDiscount,
	}, 7)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), a.ID, ReviewRequest{Action: ActionApprove}, 9,
		[]policy.Role{policy.RoleDiretorComercial})
	require.ErrorIs(t, err, ErrInsufficientAuthority)

	_, err = svc.Review(context.Background(), a.ID, ReviewRequest{Action: ActionApprove}, 9,
		[]policy.Role{policy.RoleAdministrador})
	require.NoError(t, err)
}

func TestReviewLeavesOtherPendingStatuses(t *testing.T) {
	svc, _, qRepo, quotationID := setup(12, 0)

	commercial, err := svc.Create(context.Background(), CreateApprovalRequest{
		QuotationID: quotationID,
		Type:        TypeCommercial,
	}, 7)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateApprovalRequest{
		QuotationID: quotationID,
		Type:        TypeTechnical,
	}, 7)
	require.NoError(t, err)

	// Both pending: combined status.
	assert.Equal(t, quotations.StatusPendingApproval, qRepo.store[quotationID].Status)

	_, err = svc.Review(context.Background(), commercial.ID, ReviewRequest{Action: ActionApprove}, 9,
		[]policy.Role{policy.RoleAdministrador})
	require.NoError(t, err)

	// Technical still outstanding.
	assert.Equal(t, quotations.StatusPendingTechnicalApproval, qRepo.store[quotationID].Status)
}
