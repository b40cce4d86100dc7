package checklists

import "worklog/internal/platform/apperror"

var (
	ErrEmployeeRequired = apperror.Validation("Employee is required")
	ErrRatingsRequired  = apperror.Validation("Ratings are required")
	ErrInvalidRating    = apperror.Validation("Invalid rating value")
	ErrIncomplete       = apperror.Validation("Please answer all questions before submitting")
	ErrInvalidDate      = apperror.Validation("Date must be YYYY-MM-DD or MM-DD-YYYY")
	ErrInvalidRange     = apperror.Validation("Invalid date range")
)
