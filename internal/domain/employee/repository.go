package employee

import "context"

// EmployeeRepository is the employee directory. The core never writes to it.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	List(ctx context.Context) ([]Employee, error)
}
