package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to localized messages.

const (
	// ==================== AUTH_ ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked = "AUTH_TOKEN_REVOKED"

	// ==================== AUTHZ_ ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"
	AuthzReadOnlyView = "AUTHZ_READ_ONLY_VIEW" // template preview cannot be edited

	// ==================== VALIDATION_ ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== RESOURCE_ ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== SHOP_ ====================
	ShopNotFound         = "SHOP_NOT_FOUND"
	ShopAlreadyExists    = "SHOP_ALREADY_EXISTS" // one shop per owner
	ShopProvisionFailed  = "SHOP_PROVISION_FAILED"
	ShopTemplateNotFound = "SHOP_TEMPLATE_NOT_FOUND"

	// ==================== MENU_ ====================
	MenuNotFound        = "MENU_NOT_FOUND"
	MenuInvalidCategory = "MENU_INVALID_CATEGORY"
	MenuNotListed       = "MENU_NOT_LISTED" // not among the shop's active menus

	// ==================== RESERVATION_ ====================
	ReservationNotFound          = "RESERVATION_NOT_FOUND"
	ReservationNoMenuSelected    = "RESERVATION_NO_MENU_SELECTED"
	ReservationInvalidTransition = "RESERVATION_INVALID_TRANSITION"
	ReservationInvalidSlot       = "RESERVATION_INVALID_SLOT"
	ReservationNotFinalized      = "RESERVATION_NOT_FINALIZED"

	// ==================== FEATURE_ ====================
	FeatureDisabled = "FEATURE_DISABLED" // optional integration not configured

	// ==================== INTERNAL_ ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
