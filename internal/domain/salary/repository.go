package salary

import "context"

type SalaryRepository interface {
	// Create fails with ErrDuplicateSalaryRecord when the (employee, month,
	// year) slot is taken, including when a concurrent writer wins the race.
	Create(ctx context.Context, salary Salary) (Salary, error)

	GetByID(ctx context.Context, id string) (Salary, error)

	// UpdateUnpaid writes amounts and notes only while the record is Unpaid.
	// It returns ErrCannotModifyPaidRecord otherwise.
	UpdateUnpaid(ctx context.Context, salary Salary) (Salary, error)

	// MarkPaid performs the single Unpaid -> Paid transition.
	// It returns ErrAlreadyPaid if the record is already Paid.
	MarkPaid(ctx context.Context, id string, payment PaymentDetails) (Salary, error)

	// DeleteUnpaid returns ErrCannotDeletePaidRecord for Paid records.
	DeleteUnpaid(ctx context.Context, id string) error

	// List orders by year then month, newest first.
	List(ctx context.Context, filter Filter) ([]Salary, error)
}
