package projects

import "worklog/internal/platform/apperror"

var (
	ErrNotFound        = apperror.NotFound("Project not found")
	ErrMissingKey      = apperror.Validation("Project number and project name are required")
	ErrMissingCriteria = apperror.Validation("Project number or project name is required")
	ErrDuplicate       = apperror.Conflict("A project with this number and name already exists")
	ErrInvalidDates    = apperror.Validation("Project dates are invalid")
)
