package salary

import "errors"

var (
	ErrSalaryNotFound         = errors.New("salary record not found")
	ErrDuplicateSalaryRecord  = errors.New("salary record already exists for this employee and period")
	ErrCannotModifyPaidRecord = errors.New("cannot update paid salary")
	ErrAlreadyPaid            = errors.New("salary already paid")
	ErrCannotDeletePaidRecord = errors.New("cannot delete paid salary")
	ErrInvalidMonth           = errors.New("month must be a full English month name")
	ErrInvalidStatus          = errors.New("status must be Unpaid, Pending or Paid")
)
