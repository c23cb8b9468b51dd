package atos

import (
	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
)

// SourceContract labels an occupant that came from the contract snapshot.
const SourceContract = "No contrato"

// Occupant is an upgrade currently holding a memorial item slot.
type Occupant struct {
	UpgradeID uuid.UUID `json:"upgrade_id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
}

// ItemStatus reports where an item is already used.
type ItemStatus struct {
	InContract bool     `json:"in_contract"`
	InATOs     []string `json:"in_atos,omitempty"`
}

// UsageIndex answers "is this item already on the boat, and where". It is
// advisory: nothing stops a user from stacking a duplicate, the UI just
// warns them.
type UsageIndex struct {
	slots      map[uuid.UUID][]Occupant
	optionUse  map[uuid.UUID]ItemStatus
	upgradeUse map[uuid.UUID]ItemStatus
	customUse  map[uuid.UUID]ItemStatus
}

// BuildUsageIndex walks the snapshot and every ATO's configurations.
func BuildUsageIndex(snapshot contracts.BaseSnapshot, items []ATOWithConfigs) *UsageIndex {
	idx := &UsageIndex{
		slots:      map[uuid.UUID][]Occupant{},
		optionUse:  map[uuid.UUID]ItemStatus{},
		upgradeUse: map[uuid.UUID]ItemStatus{},
		customUse:  map[uuid.UUID]ItemStatus{},
	}

	for _, o := range snapshot.SelectedOptions {
		st := idx.optionUse[o.OptionID]
		st.InContract = true
		idx.optionUse[o.OptionID] = st
	}
	for _, u := range snapshot.SelectedUpgrades {
		st := idx.upgradeUse[u.UpgradeID]
		st.InContract = true
		idx.upgradeUse[u.UpgradeID] = st
		idx.slots[u.MemorialItemID] = append(idx.slots[u.MemorialItemID], Occupant{
			UpgradeID: u.UpgradeID,
			Name:      u.Name,
			Source:    SourceContract,
		})
	}
	for _, c := range snapshot.Customizations {
		st := idx.customUse[c.CustomizationID]
		st.InContract = true
		idx.customUse[c.CustomizationID] = st
	}

	for _, item := range items {
		label := item.ATO.DisplayNumber()
		for _, cfg := range item.Configs {
			switch cfg.ItemType {
			case ItemOption:
				st := idx.optionUse[cfg.ItemID]
				st.InATOs = append(st.InATOs, label)
				idx.optionUse[cfg.ItemID] = st
			case ItemUpgrade:
				st := idx.upgradeUse[cfg.ItemID]
				st.InATOs = append(st.InATOs, label)
				idx.upgradeUse[cfg.ItemID] = st
				if cfg.MemorialItemID != nil {
					idx.slots[*cfg.MemorialItemID] = append(idx.slots[*cfg.MemorialItemID], Occupant{
						UpgradeID: cfg.ItemID,
						Name:      cfg.Name,
						Source:    label,
					})
				}
			case ItemCustomization:
				st := idx.customUse[cfg.ItemID]
				st.InATOs = append(st.InATOs, label)
				idx.customUse[cfg.ItemID] = st
			}
		}
	}
	return idx
}

// OptionStatus reports usage for an option.
func (idx *UsageIndex) OptionStatus(id uuid.UUID) ItemStatus { return idx.optionUse[id] }

// UpgradeStatus reports usage for an upgrade.
func (idx *UsageIndex) UpgradeStatus(id uuid.UUID) ItemStatus { return idx.upgradeUse[id] }

// CustomizationStatus reports usage for a customization.
func (idx *UsageIndex) CustomizationStatus(id uuid.UUID) ItemStatus { return idx.customUse[id] }

// ConflictingUpgrade returns the occupant of the memorial item slot, if the
// slot is held by a different upgrade than the one being configured.
func (idx *UsageIndex) ConflictingUpgrade(memorialItemID, currentUpgradeID uuid.UUID) *Occupant {
	for _, occ := range idx.slots[memorialItemID] {
		if occ.UpgradeID != currentUpgradeID {
			out := occ
			return &out
		}
	}
	return nil
}
