package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmployeeIDMissing = errors.New("employee id is required")
	ErrNothingToExport   = errors.New("no employees to export")
)
