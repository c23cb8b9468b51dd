package atos

import (
	"testing"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
)

var (
	slotHardtop  = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	slotFlooring = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")

	upgradeOldHardtop = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	upgradeNewHardtop = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	upgradeFlooring   = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000003")
)

func testSnapshot() contracts.BaseSnapshot {
	return contracts.BaseSnapshot{
		BasePrice:        2_000_000,
		BaseDeliveryDays: 300,
		SelectedUpgrades: []contracts.SelectedUpgrade{
			{UpgradeID: upgradeOldHardtop, MemorialItemID: slotHardtop, Name: "Hardtop fixo", Price: 80_000, DeliveryDays: 20},
		},
	}
}

func upgradeConfig(name string, memorialItem uuid.UUID, calculated float64, days int) Configuration {
	mi := memorialItem
	return Configuration{
		ID:                 uuid.New(),
		ItemType:           ItemUpgrade,
		ItemID:             uuid.New(),
		MemorialItemID:     &mi,
		Name:               name,
		OriginalPrice:      calculated,
		CalculatedPrice:    calculated,
		DeliveryImpactDays: days,
	}
}

func TestComputeImpactReplacementChargesDelta(t *testing.T) {
	ato := ATO{ID: uuid.New(), Number: 2}
	configs := []Configuration{
		upgradeConfig("Hardtop abrível", slotHardtop, 120_000, 35),
	}

	impact, err := ComputeImpact(ato, testSnapshot(), configs)
	if err != nil {
		t.Fatalf("ComputeImpact: %v", err)
	}
	// 120,000 new minus the 80,000 already paid in the contract.
	if impact.TotalPrice != 40_000 {
		t.Fatalf("TotalPrice = %v, want 40000", impact.TotalPrice)
	}
	entry := impact.Breakdown[0]
	if !entry.IsReplacement {
		t.Fatal("expected replacement entry")
	}
	if entry.ReplacedName != "Hardtop fixo" || entry.ReplacedPrice != 80_000 {
		t.Fatalf("replaced upgrade not carried into breakdown: %+v", entry)
	}
	if entry.ReplacedUpgradeID == nil || *entry.ReplacedUpgradeID != upgradeOldHardtop {
		t.Fatalf("replaced upgrade id = %v, want %v", entry.ReplacedUpgradeID, upgradeOldHardtop)
	}
}

func TestComputeImpactNonReplacementChargesFullPrice(t *testing.T) {
	ato := ATO{ID: uuid.New(), Number: 1}
	configs := []Configuration{
		upgradeConfig("Piso teca sintética", slotFlooring, 30_000, 10),
		{ID: uuid.New(), ItemType: ItemOption, ItemID: uuid.New(), Name: "Gerador extra", OriginalPrice: 55_000, CalculatedPrice: 55_000, DeliveryImpactDays: 15},
	}

	impact, err := ComputeImpact(ato, testSnapshot(), configs)
	if err != nil {
		t.Fatalf("ComputeImpact: %v", err)
	}
	if impact.TotalPrice != 85_000 {
		t.Fatalf("TotalPrice = %v, want 85000", impact.TotalPrice)
	}
	for _, e := range impact.Breakdown {
		if e.IsReplacement {
			t.Fatalf("unexpected replacement: %+v", e)
		}
	}
}

func TestComputeImpactDeliveryIsMaxNotSum(t *testing.T) {
	ato := ATO{ID: uuid.New(), Number: 1}
	configs := []Configuration{
		upgradeConfig("Hardtop abrível", slotHardtop, 120_000, 35),
		upgradeConfig("Piso teca sintética", slotFlooring, 30_000, 10),
		{ID: uuid.New(), ItemType: ItemOption, ItemID: uuid.New(), Name: "Gerador extra", CalculatedPrice: 55_000, DeliveryImpactDays: 15},
	}

	impact, err := ComputeImpact(ato, testSnapshot(), configs)
	if err != nil {
		t.Fatalf("ComputeImpact: %v", err)
	}
	if impact.DeliveryImpactDays != 35 {
		t.Fatalf("DeliveryImpactDays = %d, want 35 (max, not 60)", impact.DeliveryImpactDays)
	}
}

func TestComputeImpactMissingMemorialRefIsHardError(t *testing.T) {
	ato := ATO{ID: uuid.New(), Number: 1}
	configs := []Configuration{
		{ID: uuid.New(), ItemType: ItemUpgrade, ItemID: uuid.New(), Name: "Broken ref", CalculatedPrice: 10_000},
	}

	_, err := ComputeImpact(ato, testSnapshot(), configs)
	if err == nil {
		t.Fatal("expected hard error for upgrade without memorial item reference")
	}
}

func TestComputeContractImpactRollsUpAcrossATOs(t *testing.T) {
	contractID := uuid.New()
	hardtop := upgradeConfig("Hardtop abrível", slotHardtop, 108_000, 35)
	hardtop.OriginalPrice = 120_000 // 10% discount applied
	hardtop.DiscountPct = 10

	flooring := upgradeConfig("Piso teca sintética", slotFlooring, 30_000, 10)

	items := []ATOWithConfigs{
		{ATO: ATO{ID: uuid.New(), Number: 1}, Configs: []Configuration{hardtop}},
		{ATO: ATO{ID: uuid.New(), Number: 2}, Configs: []Configuration{flooring}},
	}

	rollup, err := ComputeContractImpact(contractID, testSnapshot(), items)
	if err != nil {
		t.Fatalf("ComputeContractImpact: %v", err)
	}
	if rollup.GrossAdditions != 150_000 {
		t.Fatalf("GrossAdditions = %v, want 150000", rollup.GrossAdditions)
	}
	if rollup.TotalDiscounts != 12_000 {
		t.Fatalf("TotalDiscounts = %v, want 12000", rollup.TotalDiscounts)
	}
	if rollup.ReplacementCredits != 80_000 {
		t.Fatalf("ReplacementCredits = %v, want 80000", rollup.ReplacementCredits)
	}
	// (108,000 - 80,000) + 30,000
	if rollup.NetImpact != 58_000 {
		t.Fatalf("NetImpact = %v, want 58000", rollup.NetImpact)
	}
	if rollup.DeliveryImpactDays != 35 {
		t.Fatalf("DeliveryImpactDays = %d, want 35", rollup.DeliveryImpactDays)
	}
}
