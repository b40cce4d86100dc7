package leave

import "worklog/internal/platform/apperror"

var (
	ErrNotFound      = apperror.NotFound("Leave request not found")
	ErrMissingFields = apperror.Validation("Missing required fields")
	ErrInvalidInput  = apperror.Validation("Invalid leave request")
	ErrInvalidStatus = apperror.Validation("Invalid status")
	ErrInvalidDates  = apperror.Validation("Invalid leave dates")
	ErrNameRequired  = apperror.Validation("User name is required")
	ErrNoPending     = apperror.NotFound("No pending leave request found for this employee")
	ErrFinalized     = apperror.InvalidState("Leave request has already been decided")
)
