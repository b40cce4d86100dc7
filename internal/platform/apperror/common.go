package apperror

import "net/http"

var (
	ErrForbidden = New(CodeForbidden, "You do not have permission to access this resource", http.StatusForbidden)

	ErrUnauthenticated = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)

	ErrInvalidPayload = New(CodeValidation, "Invalid request payload", http.StatusBadRequest)

	ErrRateLimited = New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
)
