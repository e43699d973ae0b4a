package employee

import "context"

// EmployeeRepository reads and writes the roster through the gateway.
type EmployeeRepository interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, input EmployeeInput) error
	Update(ctx context.Context, id string, input EmployeeInput) error
}
