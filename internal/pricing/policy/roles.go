package policy

// Role enumerates the application roles that interact with discount approval.
// Values match the role names stored in user_roles.
type Role string

const (
	RoleAdministrador    Role = "administrador"
	RoleDiretorComercial Role = "diretor_comercial"
	// RoleGerenteComercial is the legacy name for the commercial director role.
	// It is still present on older user records and carries the same authority.
	RoleGerenteComercial Role = "gerente_comercial"
	RolePMEngenharia     Role = "pm_engenharia"
	RoleVendedor         Role = "vendedor"
	RoleBroker           Role = "broker"
	RoleBackoffice       Role = "backoffice"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrador, RoleDiretorComercial, RoleGerenteComercial,
		RolePMEngenharia, RoleVendedor, RoleBroker, RoleBackoffice:
		return true
	}
	return false
}

// Authority levels, higher wins.
const (
	AuthorityNone     = 0
	AuthorityPM       = 1
	AuthorityDirector = 2
	AuthorityAdmin    = 3
)

// Authority orders roles by approval power. Higher wins.
func (r Role) Authority() int {
	switch r {
	case RoleAdministrador:
		return AuthorityAdmin
	case RoleDiretorComercial, RoleGerenteComercial:
		return AuthorityDirector
	case RolePMEngenharia:
		return AuthorityPM
	default:
		return AuthorityNone
	}
}

// HighestAuthority returns the strongest role in the set, ignoring unknown values.
func HighestAuthority(roles []Role) Role {
	var best Role
	bestRank := -1
	for _, r := range roles {
		if !r.Valid() {
			continue
		}
		if rank := r.Authority(); rank > bestRank {
			best = r
			bestRank = rank
		}
	}
	return best
}

func hasRole(roles []Role, want ...Role) bool {
	for _, r := range roles {
		for _, w := range want {
			if r == w {
				return true
			}
		}
	}
	return false
}
