package timesheets

import "worklog/internal/platform/apperror"

var (
	ErrNoTimesheets     = apperror.NotFound("No timesheet data found")
	ErrNoUserTimesheet  = apperror.NotFound("No timesheet found for this user")
	ErrNoDateTimesheet  = apperror.NotFound("No timesheet found for this date")
	ErrEmployeeRequired = apperror.Validation("employee_name is required")
	ErrInvalidDate      = apperror.Validation("Date must be YYYY-MM-DD or MM-DD-YYYY")
	ErrInvalidRange     = apperror.Validation("Invalid date range")
	ErrInvalidPeriod    = apperror.Validation("Period must be AM or PM")
	ErrInvalidProgress  = apperror.Validation("Progress must be Green, Yellow or Red")
	ErrEmptySubmission  = apperror.Validation("At least one hour entry is required")
	ErrAlreadySubmitted = apperror.Conflict("Timesheet already submitted for this period")
)
