package customizations

import (
	"context"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
)

// SnapshotSource feeds approved customizations into contract snapshots.
type SnapshotSource struct {
	repo Repository
}

func NewSnapshotSource(repo Repository) *SnapshotSource {
	return &SnapshotSource{repo: repo}
}

func (s *SnapshotSource) ApprovedEntries(ctx context.Context, quotationID uuid.UUID) ([]contracts.CustomizationEntry, error) {
	items, err := s.repo.ListByQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	entries := []contracts.CustomizationEntry{}
	for _, c := range items {
		if c.Status != StatusApproved {
			continue
		}
		entries = append(entries, contracts.CustomizationEntry{
			CustomizationID: c.ID,
			Name:            c.Name,
			Price:           c.AdditionalCost,
			ImpactDays:      c.DeliveryImpactDays,
		})
	}
	return entries, nil
}
