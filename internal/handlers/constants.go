package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrNotFound            = "Not found"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests"
)
