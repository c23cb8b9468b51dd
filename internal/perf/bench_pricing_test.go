package perf

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/sales/atos"
	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
)

type staticLimits struct{ set policy.LimitSet }

func (s staticLimits) Current() policy.LimitSet { return s.set }

func benchEngine() *policy.Engine {
	return policy.NewEngine(staticLimits{set: policy.LimitSet{
		Base:    policy.Limits{NoApprovalMax: 10, DirectorApprovalMax: 15, AdminApprovalAbove: 15},
		Options: policy.Limits{NoApprovalMax: 8, DirectorApprovalMax: 12, AdminApprovalAbove: 12},
	}})
}

// BenchmarkRequiredApproverRole exercises the gate evaluated on every
// quotation write.
func BenchmarkRequiredApproverRole(b *testing.B) {
	engine := benchEngine()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = engine.RequiredApproverRole(float64(i%20), float64(i%15))
	}
}

// BenchmarkComputeContractImpact measures the roll-up for a contract with a
// realistic amendment history: 10 ATOs of 20 line items each against a
// snapshot carrying 50 upgrades.
func BenchmarkComputeContractImpact(b *testing.B) {
	contractID := uuid.New()
	snapshot := contracts.BaseSnapshot{BasePrice: 12_000_000, BaseDeliveryDays: 420}
	memorialIDs := make([]uuid.UUID, 50)
	for i := range memorialIDs {
		memorialIDs[i] = uuid.New()
		snapshot.SelectedUpgrades = append(snapshot.SelectedUpgrades, contracts.SelectedUpgrade{
			UpgradeID:      uuid.New(),
			MemorialItemID: memorialIDs[i],
			Name:           fmt.Sprintf("Upgrade %d", i),
			Price:          50_000,
			DeliveryDays:   30,
		})
	}

	items := make([]atos.ATOWithConfigs, 0, 10)
	for a := 0; a < 10; a++ {
		item := atos.ATOWithConfigs{
			ATO: atos.ATO{ID: uuid.New(), ContractID: contractID, Number: a + 1, Status: atos.StatusApproved},
		}
		for c := 0; c < 20; c++ {
			cfg := atos.Configuration{
				ID:                 uuid.New(),
				ItemType:           atos.ItemOption,
				ItemID:             uuid.New(),
				Name:               fmt.Sprintf("Config %d/%d", a, c),
				OriginalPrice:      80_000,
				CalculatedPrice:    76_000,
				DiscountPct:        5,
				DeliveryImpactDays: c % 45,
			}
			if c%4 == 0 {
				mid := memorialIDs[(a*20+c)%len(memorialIDs)]
				cfg.ItemType = atos.ItemUpgrade
				cfg.MemorialItemID = &mid
			}
			item.Configs = append(item.Configs, cfg)
		}
		items = append(items, item)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := atos.ComputeContractImpact(contractID, snapshot, items); err != nil {
			b.Fatal(err)
		}
	}
}
