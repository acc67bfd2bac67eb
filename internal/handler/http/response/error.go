package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid token")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrMustCheckInFirst):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidAction),
		errors.Is(err, attendance.ErrInvalidTimeFormat),
		errors.Is(err, attendance.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Salary domain errors
	case errors.Is(err, salary.ErrSalaryNotFound):
		NotFound(w, "Salary record not found")
	case errors.Is(err, salary.ErrDuplicateSalaryRecord),
		errors.Is(err, salary.ErrCannotModifyPaidRecord),
		errors.Is(err, salary.ErrAlreadyPaid),
		errors.Is(err, salary.ErrCannotDeletePaidRecord):
		Conflict(w, err.Error())
	case errors.Is(err, salary.ErrInvalidMonth),
		errors.Is(err, salary.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)

	// Ledger domain errors
	case errors.Is(err, ledger.ErrPaymentAccountNotFound):
		NotFound(w, "Payment account not found")
	case errors.Is(err, ledger.ErrPaymentAccountInactive),
		errors.Is(err, ledger.ErrPaymentAccountNameExists):
		Conflict(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
