package limits

import (
	"time"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
)

// LimitType identifies a discount category row in discount_limits_config.
type LimitType string

const (
	LimitTypeBase          LimitType = "base"
	LimitTypeOptions       LimitType = "options"
	LimitTypeCustomization LimitType = "customization"
)

// Valid reports whether t is a known limit type.
func (t LimitType) Valid() bool {
	switch t {
	case LimitTypeBase, LimitTypeOptions, LimitTypeCustomization:
		return true
	}
	return false
}

// Config is one threshold row. All thresholds are percents in [0, 100] with
// NoApprovalMax <= DirectorApprovalMax <= AdminApprovalRequiredAbove.
type Config struct {
	ID                         uuid.UUID  `json:"id"`
	LimitType                  LimitType  `json:"limit_type"`
	NoApprovalMax              float64    `json:"no_approval_max"`
	DirectorApprovalMax        float64    `json:"director_approval_max"`
	AdminApprovalRequiredAbove float64    `json:"admin_approval_required_above"`
	UpdatedBy                  *int64     `json:"updated_by,omitempty"`
	UpdatedAt                  *time.Time `json:"updated_at,omitempty"`
}

// Limits converts the row into the policy engine's value type.
func (c Config) Limits() policy.Limits {
	return policy.Limits{
		NoApprovalMax:       c.NoApprovalMax,
		DirectorApprovalMax: c.DirectorApprovalMax,
		AdminApprovalAbove:  c.AdminApprovalRequiredAbove,
	}
}

// Fallback defaults used when the configuration store is unreachable or a row
// is missing. Pricing must keep working, so fetch failures degrade to these
// instead of erroring.
var (
	DefaultBase          = policy.Limits{NoApprovalMax: 10, DirectorApprovalMax: 15, AdminApprovalAbove: 15}
	DefaultOptions       = policy.Limits{NoApprovalMax: 8, DirectorApprovalMax: 12, AdminApprovalAbove: 12}
	DefaultCustomization = policy.Limits{NoApprovalMax: 10, DirectorApprovalMax: 15, AdminApprovalAbove: 15}
)

// DefaultSet is the fallback snapshot for the policy engine.
func DefaultSet() policy.LimitSet {
	return policy.LimitSet{Base: DefaultBase, Options: DefaultOptions}
}
