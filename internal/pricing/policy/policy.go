// Package policy classifies discount percentages into approval requirements.
//
// All functions are pure over a Limits snapshot supplied by the caller; the
// snapshot normally comes from the pricing/limits cache so render-time checks
// never block on the database.
package policy

import "math"

// Limits holds the three thresholds for one discount category, as percents.
type Limits struct {
	NoApprovalMax       float64
	DirectorApprovalMax float64
	AdminApprovalAbove  float64
}

// LimitSet groups the per-category thresholds the engine evaluates against.
type LimitSet struct {
	Base    Limits
	Options Limits
}

// LimitsProvider supplies the current threshold snapshot without blocking.
type LimitsProvider interface {
	Current() LimitSet
}

// Engine evaluates discount approval rules against configurable thresholds.
type Engine struct {
	limits LimitsProvider
}

// NewEngine constructs an Engine reading thresholds from provider.
func NewEngine(provider LimitsProvider) *Engine {
	return &Engine{limits: provider}
}

// NeedsApproval reports whether either discount exceeds its category's
// no-approval ceiling. Each category is checked independently.
func (e *Engine) NeedsApproval(baseDiscountPct, optionsDiscountPct float64) bool {
	ls := e.limits.Current()
	return baseDiscountPct > ls.Base.NoApprovalMax ||
		optionsDiscountPct > ls.Options.NoApprovalMax
}

// RequiredApproverRole resolves which role must sign off the given discount
// pair. ok is false when no approval is needed.
//
// The no-approval short-circuit compares max(discounts) against
// min(no-approval ceilings), which is coarser than NeedsApproval's per-category
// check. When the two categories have different ceilings the functions can
// disagree at the boundary; call sites depend on both behaviours, so the
// discrepancy is kept as-is.
func (e *Engine) RequiredApproverRole(baseDiscountPct, optionsDiscountPct float64) (role Role, ok bool) {
	ls := e.limits.Current()
	maxDiscount := math.Max(baseDiscountPct, optionsDiscountPct)

	if maxDiscount <= math.Min(ls.Base.NoApprovalMax, ls.Options.NoApprovalMax) {
		return "", false
	}

	if baseDiscountPct > ls.Base.DirectorApprovalMax ||
		optionsDiscountPct > ls.Options.DirectorApprovalMax {
		return RoleAdministrador, true
	}
	return RoleDiretorComercial, true
}

// CanApproveDiscount reports whether any of the user's roles may approve the
// given discount pair. Administrators approve anything; commercial directors
// (including the legacy gerente_comercial records) approve only within the
// director ceilings.
func (e *Engine) CanApproveDiscount(baseDiscountPct, optionsDiscountPct float64, userRoles []Role) bool {
	if hasRole(userRoles, RoleAdministrador) {
		return true
	}
	if hasRole(userRoles, RoleDiretorComercial, RoleGerenteComercial) {
		ls := e.limits.Current()
		return baseDiscountPct <= ls.Base.DirectorApprovalMax &&
			optionsDiscountPct <= ls.Options.DirectorApprovalMax
	}
	return false
}

// ApprovalMessage returns the user-facing classification of the discount pair.
func (e *Engine) ApprovalMessage(baseDiscountPct, optionsDiscountPct float64) string {
	if !e.NeedsApproval(baseDiscountPct, optionsDiscountPct) {
		return "Desconto aprovado automaticamente"
	}
	if role, ok := e.RequiredApproverRole(baseDiscountPct, optionsDiscountPct); ok && role == RoleAdministrador {
		return "Este desconto requer aprovação do Administrador"
	}
	return "Este desconto requer aprovação do Diretor Comercial"
}

// MaxDiscountForRoles returns the largest discount percent the user can apply
// without triggering an approval request. Administrators are bounded only by
// the absolute cap enforced at validation time.
func (e *Engine) MaxDiscountForRoles(userRoles []Role, absoluteCap float64) float64 {
	if hasRole(userRoles, RoleAdministrador) {
		return absoluteCap
	}
	ls := e.limits.Current()
	if hasRole(userRoles, RoleDiretorComercial, RoleGerenteComercial, RolePMEngenharia) {
		return math.Max(ls.Base.DirectorApprovalMax, ls.Options.DirectorApprovalMax)
	}
	return math.Max(ls.Base.NoApprovalMax, ls.Options.NoApprovalMax)
}
