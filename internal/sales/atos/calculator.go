package atos

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
)

var ErrIncompleteData = errors.New("aggregated impact: incomplete data")

// BreakdownEntry explains one configuration's contribution to the aggregate.
type BreakdownEntry struct {
	ConfigurationID    uuid.UUID  `json:"configuration_id"`
	ItemType           ItemType   `json:"item_type"`
	Name               string     `json:"name"`
	CalculatedPrice    float64    `json:"calculated_price"`
	EffectivePrice     float64    `json:"effective_price"`
	IsReplacement      bool       `json:"is_replacement"`
	ReplacedUpgradeID  *uuid.UUID `json:"replaced_upgrade_id,omitempty"`
	ReplacedName       string     `json:"replaced_name,omitempty"`
	ReplacedPrice      float64    `json:"replaced_price,omitempty"`
	DeliveryImpactDays int        `json:"delivery_impact_days"`
}

// AggregatedImpact is the full price and schedule effect of one ATO against
// its contract's base snapshot.
type AggregatedImpact struct {
	ATOID              uuid.UUID        `json:"ato_id"`
	ATONumber          string           `json:"ato_number"`
	TotalPrice         float64          `json:"total_price"`
	DeliveryImpactDays int              `json:"delivery_impact_days"`
	Breakdown          []BreakdownEntry `json:"breakdown"`
}

// ComputeImpact aggregates the configurations of one ATO against the
// contract snapshot.
//
// An upgrade whose memorial item slot is already occupied in the snapshot is
// a replacement: the client pays the difference between new and old, and the
// old upgrade's price shows up as a credit in the breakdown. Everything else
// contributes its full calculated price. Delivery impacts do not accumulate;
// the slowest line item drives the schedule.
func ComputeImpact(ato ATO, snapshot contracts.BaseSnapshot, configs []Configuration) (AggregatedImpact, error) {
	impact := AggregatedImpact{
		ATOID:     ato.ID,
		ATONumber: ato.DisplayNumber(),
		Breakdown: make([]BreakdownEntry, 0, len(configs)),
	}

	for _, cfg := range configs {
		entry := BreakdownEntry{
			ConfigurationID:    cfg.ID,
			ItemType:           cfg.ItemType,
			Name:               cfg.Name,
			CalculatedPrice:    cfg.CalculatedPrice,
			EffectivePrice:     cfg.CalculatedPrice,
			DeliveryImpactDays: cfg.DeliveryImpactDays,
		}

		if cfg.ItemType == ItemUpgrade {
			if cfg.MemorialItemID == nil {
				return AggregatedImpact{}, fmt.Errorf("%w: configuration %s (%s) has no memorial item reference",
					ErrIncompleteData, cfg.ID, cfg.Name)
			}
			if old, ok := snapshot.UpgradeByMemorialItem(*cfg.MemorialItemID); ok {
				entry.IsReplacement = true
				replacedID := old.UpgradeID
				entry.ReplacedUpgradeID = &replacedID
				entry.ReplacedName = old.Name
				entry.ReplacedPrice = old.Price
				entry.EffectivePrice = cfg.CalculatedPrice - old.Price
			}
		}

		impact.TotalPrice += entry.EffectivePrice
		if entry.DeliveryImpactDays > impact.DeliveryImpactDays {
			impact.DeliveryImpactDays = entry.DeliveryImpactDays
		}
		impact.Breakdown = append(impact.Breakdown, entry)
	}
	return impact, nil
}

// ContractImpact rolls the approved ATOs of a contract into one view.
type ContractImpact struct {
	ContractID         uuid.UUID          `json:"contract_id"`
	GrossAdditions     float64            `json:"gross_additions"`
	TotalDiscounts     float64            `json:"total_discounts"`
	ReplacementCredits float64            `json:"replacement_credits"`
	NetImpact          float64            `json:"net_impact"`
	DeliveryImpactDays int                `json:"delivery_impact_days"`
	PerATO             []AggregatedImpact `json:"per_ato"`
}

// ATOWithConfigs pairs an ATO with its line items for roll-up computation.
type ATOWithConfigs struct {
	ATO     ATO
	Configs []Configuration
}

// ComputeContractImpact aggregates every given ATO against the snapshot.
// The contract-level delivery impact is the max across ATOs of each ATO's
// own max: change orders run concurrently, they do not queue.
func ComputeContractImpact(contractID uuid.UUID, snapshot contracts.BaseSnapshot, items []ATOWithConfigs) (ContractImpact, error) {
	result := ContractImpact{ContractID: contractID}

	for _, item := range items {
		impact, err := ComputeImpact(item.ATO, snapshot, item.Configs)
		if err != nil {
			return ContractImpact{}, err
		}
		for i, cfg := range item.Configs {
			result.GrossAdditions += cfg.OriginalPrice
			result.TotalDiscounts += cfg.OriginalPrice - cfg.CalculatedPrice
			if impact.Breakdown[i].IsReplacement {
				result.ReplacementCredits += impact.Breakdown[i].ReplacedPrice
			}
		}
		result.NetImpact += impact.TotalPrice
		if impact.DeliveryImpactDays > result.DeliveryImpactDays {
			result.DeliveryImpactDays = impact.DeliveryImpactDays
		}
		result.PerATO = append(result.PerATO, impact)
	}
	return result, nil
}
