package shared

// Catalog and pricing permissions declared for RBAC.
const (
	PermCatalogView = "catalog.view"
	PermCatalogEdit = "catalog.edit"

	PermPricingLimitsView   = "pricing.limits.view"
	PermPricingLimitsManage = "pricing.limits.manage"
)

// CatalogScopes lists all permissions related to catalog and pricing.
func CatalogScopes() []string {
	return []string{
		PermCatalogView,
		PermCatalogEdit,
		PermPricingLimitsView,
		PermPricingLimitsManage,
	}
}
