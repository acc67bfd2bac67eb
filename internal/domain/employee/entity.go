package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the read-only projection of the employee directory used by
// attendance and payroll.
type Employee struct {
	ID               string
	Name             string
	Email            string
	ERPID            *string
	Department       *string
	Title            *string
	BaseSalary       decimal.Decimal
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "Active"
	EmploymentStatusOnLeave    EmploymentStatus = "OnLeave"
	EmploymentStatusTerminated EmploymentStatus = "Terminated"
	EmploymentStatusResigned   EmploymentStatus = "Resigned"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
