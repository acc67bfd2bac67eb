package salary

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type CalculationRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Month      string `json:"month" validate:"required"`
	Year       int    `json:"year" validate:"required,min=2000,max=2100"`
}

func (r *CalculationRequest) Validate() error {
	return validatePeriod(r, &r.Month)
}

type CalculationResponse struct {
	EmployeeID      string          `json:"employee_id"`
	Month           string          `json:"month"`
	Year            int             `json:"year"`
	LateDays        int             `json:"late_days"`
	DeductibleDays  int             `json:"deductible_days"`
	DeductionAmount decimal.Decimal `json:"deduction_amount"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
}

// ========== LIFECYCLE DTOs ==========

type CreateSalaryRequest struct {
	EmployeeID    string           `json:"employee_id" validate:"required"`
	Month         string           `json:"month" validate:"required"`
	Year          int              `json:"year" validate:"required,min=2000,max=2100"`
	BasicSalary   *decimal.Decimal `json:"basic_salary,omitempty"`
	Allowances    *decimal.Decimal `json:"allowances,omitempty"`
	Deductions    *decimal.Decimal `json:"deductions,omitempty"`
	LateDays      *int             `json:"late_days,omitempty" validate:"omitempty,gte=0"`
	LateDeduction *decimal.Decimal `json:"late_deduction,omitempty"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateSalaryRequest) Validate() error {
	if err := validatePeriod(r, &r.Month); err != nil {
		return err
	}
	return validateAmounts(map[string]*decimal.Decimal{
		"basic_salary":   r.BasicSalary,
		"allowances":     r.Allowances,
		"deductions":     r.Deductions,
		"late_deduction": r.LateDeduction,
	})
}

type UpdateSalaryRequest struct {
	ID            string           `json:"-"`
	BasicSalary   *decimal.Decimal `json:"basic_salary,omitempty"`
	Allowances    *decimal.Decimal `json:"allowances,omitempty"`
	Deductions    *decimal.Decimal `json:"deductions,omitempty"`
	LateDays      *int             `json:"late_days,omitempty" validate:"omitempty,gte=0"`
	LateDeduction *decimal.Decimal `json:"late_deduction,omitempty"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *UpdateSalaryRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	return validateAmounts(map[string]*decimal.Decimal{
		"basic_salary":   r.BasicSalary,
		"allowances":     r.Allowances,
		"deductions":     r.Deductions,
		"late_deduction": r.LateDeduction,
	})
}

type PaySalaryRequest struct {
	ID string `json:"-"`
	// PaymentAccountID is either an account id or an account name such as "JazzCash".
	PaymentAccountID string  `json:"payment_account_id" validate:"required,max=100"`
	TransactionID    *string `json:"transaction_id,omitempty" validate:"omitempty,max=100"`
	PaidBy           *string `json:"paid_by,omitempty" validate:"omitempty,max=100"`
}

func (r *PaySalaryRequest) Validate() error {
	return validator.Struct(r)
}

// DefaultPaidBy is recorded when a payment does not name who paid.
const DefaultPaidBy = "Manager"

type Filter struct {
	Month      string `json:"month"`
	Year       int    `json:"year" validate:"omitempty,min=2000,max=2100"`
	Status     string `json:"status"`
	EmployeeID string `json:"employee_id"`
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(f); err != nil {
		return err
	}
	if f.Month != "" {
		m, err := clock.ParseMonth(f.Month)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "month", Message: ErrInvalidMonth.Error()})
		} else {
			f.Month = m.String()
		}
	}
	if f.Status != "" {
		s, err := ParseStatus(f.Status)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "status", Message: err.Error()})
		} else {
			f.Status = string(s)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       *string         `json:"employee_name,omitempty"`
	EmployeeERPID      *string         `json:"employee_erp_id,omitempty"`
	Month              string          `json:"month"`
	Year               int             `json:"year"`
	BasicSalary        decimal.Decimal `json:"basic_salary"`
	Allowances         decimal.Decimal `json:"allowances"`
	Deductions         decimal.Decimal `json:"deductions"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	LateDays           int             `json:"late_days"`
	LateDeduction      decimal.Decimal `json:"late_deduction"`
	Status             string          `json:"status"`
	PaymentAccountID   *string         `json:"payment_account_id,omitempty"`
	PaymentAccountName *string         `json:"payment_account_name,omitempty"`
	TransactionID      *string         `json:"transaction_id,omitempty"`
	PaidDate           *time.Time      `json:"paid_date,omitempty"`
	PaidBy             *string         `json:"paid_by,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func ToResponse(s Salary) SalaryResponse {
	return SalaryResponse{
		ID:                 s.ID,
		EmployeeID:         s.EmployeeID,
		EmployeeName:       s.EmployeeName,
		EmployeeERPID:      s.EmployeeERPID,
		Month:              s.Month,
		Year:               s.Year,
		BasicSalary:        s.BasicSalary,
		Allowances:         s.Allowances,
		Deductions:         s.Deductions,
		NetSalary:          s.NetSalary,
		LateDays:           s.LateDays,
		LateDeduction:      s.LateDeduction,
		Status:             string(s.Status),
		PaymentAccountID:   s.PaymentAccountID,
		PaymentAccountName: s.PaymentAccountName,
		TransactionID:      s.TransactionID,
		PaidDate:           s.PaidDate,
		PaidBy:             s.PaidBy,
		Notes:              s.Notes,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func ToResponses(records []Salary) []SalaryResponse {
	out := make([]SalaryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToResponse(r))
	}
	return out
}

type ListSalaryResponse struct {
	Count        int              `json:"count"`
	TotalPaid    decimal.Decimal  `json:"total_paid"`
	TotalPending decimal.Decimal  `json:"total_pending"`
	Salaries     []SalaryResponse `json:"salaries"`
}

type PaySalaryResponse struct {
	Salary      SalaryResponse             `json:"salary"`
	Transaction ledger.TransactionResponse `json:"transaction"`
}

type EmployeeOverviewResponse struct {
	Salaries []SalaryResponse `json:"salaries"`
	Stats    Totals           `json:"stats"`
}

type EmployeeSalaryStats struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	ERPID        *string         `json:"erp_id,omitempty"`
	BasicSalary  decimal.Decimal `json:"basic_salary"`
	JoinDate     string          `json:"join_date"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
	RecordCount  int             `json:"record_count"`
}

type MonthlyBatchResult struct {
	Month        string `json:"month"`
	Year         int    `json:"year"`
	CreatedCount int    `json:"created_count"`
	SkippedCount int    `json:"skipped_count"`
}

// validatePeriod checks tags on r and canonicalizes *month in place.
func validatePeriod(r any, month *string) error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = fieldErrs
	}
	if *month != "" {
		m, err := clock.ParseMonth(*month)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "month", Message: ErrInvalidMonth.Error()})
		} else {
			*month = m.String()
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAmounts(amounts map[string]*decimal.Decimal) error {
	var errs validator.ValidationErrors
	for field, v := range amounts {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
