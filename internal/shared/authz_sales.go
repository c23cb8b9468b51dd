package shared

// Sales permissions declared for RBAC.
const (
	// Quotation permissions
	PermQuotationView    = "sales.quotation.view"
	PermQuotationCreate  = "sales.quotation.create"
	PermQuotationEdit    = "sales.quotation.edit"
	PermQuotationApprove = "sales.quotation.approve"

	// Discount approval permissions
	PermApprovalView    = "sales.approval.view"
	PermApprovalRequest = "sales.approval.request"
	PermApprovalReview  = "sales.approval.review"

	// Contract permissions
	PermContractView = "sales.contract.view"
	PermContractEdit = "sales.contract.edit"

	// Change order (ATO) permissions
	PermATOView   = "sales.ato.view"
	PermATOEdit   = "sales.ato.edit"
	PermATOReview = "sales.ato.review"

	// Customization workflow permissions
	PermCustomizationView     = "sales.customization.view"
	PermCustomizationEdit     = "sales.customization.edit"
	PermCustomizationWorkflow = "sales.customization.workflow"
)

// SalesScopes lists all permissions related to the sales module.
func SalesScopes() []string {
	return []string{
		PermQuotationView,
		PermQuotationCreate,
		PermQuotationEdit,
		PermQuotationApprove,
		PermApprovalView,
		PermApprovalRequest,
		PermApprovalReview,
		PermContractView,
		PermContractEdit,
		PermATOView,
		PermATOEdit,
		PermATOReview,
		PermCustomizationView,
		PermCustomizationEdit,
		PermCustomizationWorkflow,
	}
}
