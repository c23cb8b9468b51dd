package atos

import (
	"testing"

	"github.com/google/uuid"
)

func TestConflictingUpgradeFromContract(t *testing.T) {
	idx := BuildUsageIndex(testSnapshot(), nil)

	occ := idx.ConflictingUpgrade(slotHardtop, upgradeNewHardtop)
	if occ == nil {
		t.Fatal("expected conflict with the contract hardtop")
	}
	if occ.Source != SourceContract {
		t.Fatalf("Source = %q, want %q", occ.Source, SourceContract)
	}
	if occ.Name != "Hardtop fixo" {
		t.Fatalf("Name = %q", occ.Name)
	}
}

func TestConflictingUpgradeFromATO(t *testing.T) {
	flooringCfg := upgradeConfig("Piso teca sintética", slotFlooring, 30_000, 10)
	flooringCfg.ItemID = upgradeFlooring
	idx := BuildUsageIndex(testSnapshot(), []ATOWithConfigs{
		{ATO: ATO{ID: uuid.New(), Number: 3}, Configs: []Configuration{flooringCfg}},
	})

	occ := idx.ConflictingUpgrade(slotFlooring, uuid.New())
	if occ == nil {
		t.Fatal("expected conflict with the ATO flooring upgrade")
	}
	if occ.Source != "ATO 3" {
		t.Fatalf("Source = %q, want %q", occ.Source, "ATO 3")
	}
}

func TestNoConflictForSameUpgrade(t *testing.T) {
	idx := BuildUsageIndex(testSnapshot(), nil)

	if occ := idx.ConflictingUpgrade(slotHardtop, upgradeOldHardtop); occ != nil {
		t.Fatalf("editing the occupant itself must not conflict, got %+v", occ)
	}
}

func TestNoConflictForFreeSlot(t *testing.T) {
	idx := BuildUsageIndex(testSnapshot(), nil)

	if occ := idx.ConflictingUpgrade(slotFlooring, upgradeFlooring); occ != nil {
		t.Fatalf("free slot must not conflict, got %+v", occ)
	}
}

func TestItemStatusTracksContractAndATOs(t *testing.T) {
	optionID := uuid.New()
	cfg := Configuration{ID: uuid.New(), ItemType: ItemOption, ItemID: optionID, Name: "Gerador extra", CalculatedPrice: 55_000}
	idx := BuildUsageIndex(testSnapshot(), []ATOWithConfigs{
		{ATO: ATO{ID: uuid.New(), Number: 1}, Configs: []Configuration{cfg}},
		{ATO: ATO{ID: uuid.New(), Number: 4}, Configs: []Configuration{cfg}},
	})

	st := idx.OptionStatus(optionID)
	if st.InContract {
		t.Fatal("option is not in the contract snapshot")
	}
	if len(st.InATOs) != 2 || st.InATOs[0] != "ATO 1" || st.InATOs[1] != "ATO 4" {
		t.Fatalf("InATOs = %v", st.InATOs)
	}

	up := idx.UpgradeStatus(upgradeOldHardtop)
	if !up.InContract {
		t.Fatal("contract upgrade should be marked in contract")
	}
}
