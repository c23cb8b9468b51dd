package quotations

import (
	"fmt"

	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
)

// MaxAbsoluteDiscount is the hard ceiling no role may exceed.
const MaxAbsoluteDiscount = 30.0

// ValidationResult carries blocking errors and advisory warnings for a
// discount pair.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateDiscounts checks a discount pair against the absolute cap and the
// caller's role ceilings. Exceeding a role ceiling is a warning, not an
// error: the quotation can still be created and routed for approval.
func ValidateDiscounts(engine *policy.Engine, base, options float64, userRoles []policy.Role) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, pair := range []struct {
		label string
		value float64
	}{
		{"base discount", base},
		{"options discount", options},
	} {
		if pair.value < 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s must not be negative", pair.label))
		}
		if pair.value > MaxAbsoluteDiscount {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s exceeds the absolute maximum of %.0f%%", pair.label, MaxAbsoluteDiscount))
		}
	}
	if !result.Valid {
		return result
	}

	if engine.NeedsApproval(base, options) {
		result.Warnings = append(result.Warnings, engine.ApprovalMessage(base, options))
	}
	if len(userRoles) > 0 && !engine.CanApproveDiscount(base, options, userRoles) {
		roleMax := engine.MaxDiscountForRoles(userRoles, MaxAbsoluteDiscount)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("discount above your approval limit of %.1f%%; it will require approval", roleMax))
	}
	return result
}
