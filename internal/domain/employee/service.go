package employee

import (
	"context"

	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/export"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees returns the filtered roster plus the filter options of the whole roster
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee returns one employee shaped as the edit form
	GetEmployee(ctx context.Context, id string) (EmployeeInput, error)

	CreateEmployee(ctx context.Context, req EmployeeInput) error

	UpdateEmployee(ctx context.Context, id string, req EmployeeInput) error

	// ExportEmployees renders the filtered roster as a spreadsheet or PDF
	ExportEmployees(ctx context.Context, filter EmployeeFilter, format export.Format) (export.File, error)
}
