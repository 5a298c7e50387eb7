package shared

// Core platform permissions.
const (
	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermRolesView = "roles.view"
	PermRolesEdit = "roles.edit"

	PermPermissionsView = "permissions.view"
)

// Masterdata permissions.
const (
	PermAccountView   = "masterdata.account.view"
	PermAccountCreate = "masterdata.account.create"
	PermAccountEdit   = "masterdata.account.edit"
	PermAccountDelete = "masterdata.account.delete"

	PermContactView   = "masterdata.contact.view"
	PermContactCreate = "masterdata.contact.create"
	PermContactEdit   = "masterdata.contact.edit"
	PermContactDelete = "masterdata.contact.delete"

	PermProductView   = "masterdata.product.view"
	PermProductCreate = "masterdata.product.create"
	PermProductEdit   = "masterdata.product.edit"
	PermProductDelete = "masterdata.product.delete"

	PermCategoryView   = "masterdata.category.view"
	PermCategoryCreate = "masterdata.category.create"
	PermCategoryEdit   = "masterdata.category.edit"
	PermCategoryDelete = "masterdata.category.delete"
)

// Quotation permissions.
const (
	PermQuotationView    = "sales.quotation.view"
	PermQuotationCreate  = "sales.quotation.create"
	PermQuotationEdit    = "sales.quotation.edit"
	PermQuotationApprove = "sales.quotation.approve"
	PermQuotationReject  = "sales.quotation.reject"
	PermQuotationDelete  = "sales.quotation.delete"
	PermQuotationPrint   = "sales.quotation.print"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermRolesEdit,
		PermPermissionsView,
	}
}

// MasterdataScopes lists all permissions related to masterdata records.
func MasterdataScopes() []string {
	return []string{
		PermAccountView,
		PermAccountCreate,
		PermAccountEdit,
		PermAccountDelete,
		PermContactView,
		PermContactCreate,
		PermContactEdit,
		PermContactDelete,
		PermProductView,
		PermProductCreate,
		PermProductEdit,
		PermProductDelete,
		PermCategoryView,
		PermCategoryCreate,
		PermCategoryEdit,
		PermCategoryDelete,
	}
}

// QuotationScopes lists all permissions related to quotations.
func QuotationScopes() []string {
	return []string{
		PermQuotationView,
		PermQuotationCreate,
		PermQuotationEdit,
		PermQuotationApprove,
		PermQuotationReject,
		PermQuotationDelete,
		PermQuotationPrint,
	}
}

// AllScopes returns every permission known to the application.
func AllScopes() []string {
	scopes := CoreScopes()
	scopes = append(scopes, MasterdataScopes()...)
	scopes = append(scopes, QuotationScopes()...)
	return scopes
}
