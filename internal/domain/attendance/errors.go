package attendance

import "errors"

// Attendance domain errors
var (
	ErrInvalidDate       = errors.New("date must be in YYYY-MM-DD format")
	ErrRecordNotFound    = errors.New("attendance record not found for employee")
	ErrUnknownField      = errors.New("unknown attendance field")
	ErrInvalidFieldValue = errors.New("invalid value for attendance field")
	ErrSaveInProgress    = errors.New("attendance changes are being saved")
	ErrNothingToExport   = errors.New("no attendance records to export")
	ErrUnknownVisibility = errors.New("unknown attendance visibility policy")
	ErrRosterUnavailable = errors.New("failed to load employees data")
)
