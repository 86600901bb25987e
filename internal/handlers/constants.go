package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgInvalidID          = "Invalid ID"
	ErrMsgInternal           = "Internal server error"
	ErrMsgCloneFailed        = "Failed to clone template %d as %q"
)

// Error codes carried in the "code" field of error bodies
const (
	CodeValidation      = "validation_failed"
	CodeNotFound        = "not_found"
	CodeDuplicateName   = "duplicate_name"
	CodeDuplicateCode   = "duplicate_code"
	CodeDeletionBlocked = "deletion_blocked"
	CodeMixedParent     = "mixed_parent"
	CodeCloneFailed     = "clone_failed"
	CodeInternal        = "internal_error"
)

// API path constants
const (
	APIBasePath   = "/api/v1"
	AdminBasePath = APIBasePath + "/admin"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20
