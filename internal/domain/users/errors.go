package users

import "worklog/internal/platform/apperror"

var (
	ErrNotFound       = apperror.NotFound("User not found")
	ErrDuplicateEmail = apperror.Conflict("User with this email already exists")
	ErrInvalidRole    = apperror.Validation("Role must be admin or user")
	ErrMissingFields  = apperror.Validation("Name, email and password are required")
)
