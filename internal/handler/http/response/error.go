package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/export"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/gateway"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var statusErr *gateway.StatusError
	var appErr *gateway.ApplicationError

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrSessionExpired):
		Unauthorized(w, "Session expired")
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeIDMissing):
		BadRequest(w, "Employee ID is required", nil)
	case errors.Is(err, employee.ErrNothingToExport):
		NotFound(w, "No employees match the current filters")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidDate):
		BadRequest(w, attendance.ErrInvalidDate.Error(), nil)
	case errors.Is(err, attendance.ErrUnknownField), errors.Is(err, attendance.ErrInvalidFieldValue):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrSaveInProgress):
		Conflict(w, "Changes are being saved, try again shortly")
	case errors.Is(err, attendance.ErrNothingToExport):
		NotFound(w, "No attendance records to export")
	case errors.Is(err, attendance.ErrRosterUnavailable):
		BadGateway(w, "Failed to load employees data")

	case errors.Is(err, export.ErrUnsupportedFormat):
		BadRequest(w, "Export format must be xlsx or pdf", nil)

	// Gateway errors
	case errors.As(err, &statusErr):
		BadGateway(w, statusErr.Error())
	case errors.As(err, &appErr):
		BadGateway(w, appErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		GatewayTimeout(w, "The gateway did not answer in time")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
