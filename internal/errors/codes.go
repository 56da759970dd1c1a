package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps codes to display copy.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // not signed in
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong account or password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // token malformed or forged
	AuthSessionExpired     = "AUTH_SESSION_EXPIRED"     // session expired
	AuthAccountSuspended   = "AUTH_ACCOUNT_SUSPENDED"   // account suspended
	AuthAccountInactive    = "AUTH_ACCOUNT_INACTIVE"    // account not activated
	AuthAccountLocked      = "AUTH_ACCOUNT_LOCKED"      // too many wrong passwords
	AuthPhoneExists        = "AUTH_PHONE_EXISTS"        // phone already registered
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"     // username taken
	AuthEmailExists        = "AUTH_EMAIL_EXISTS"        // email already registered

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden  = "AUTHZ_FORBIDDEN"   // no access
	AuthzSellerOnly = "AUTHZ_SELLER_ONLY" // sellers only
	AuthzAdminOnly  = "AUTHZ_ADMIN_ONLY"  // admins only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // malformed input
	ValidationInvalidPhone  = "VALIDATION_INVALID_PHONE"  // bad phone format
	ValidationInvalidEmail  = "VALIDATION_INVALID_EMAIL"  // bad email format
	ValidationInvalidLength = "VALIDATION_INVALID_LENGTH" // length out of range
	ValidationRequired      = "VALIDATION_REQUIRED"       // required field missing

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // resource does not exist
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // resource already exists
	ResourceConflict      = "RESOURCE_CONFLICT"       // resource conflict

	// ==================== Orders (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"          // order does not exist
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION" // illegal status transition
	OrderEmptyCart         = "ORDER_EMPTY_CART"         // cart is empty

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // unsupported file type
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // file too large
	UploadFailed          = "UPLOAD_FAILED"            // upload failed

	// ==================== Storage (STORAGE_) ====================
	StorageUnavailable = "STORAGE_UNAVAILABLE" // storage backend unreachable

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // server error
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // storage error
)
