package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepository{db: db}
}

const salaryColumns = `
	s.id, s.employee_id, s.month, s.year, s.basic_salary, s.allowances, s.deductions,
	s.net_salary, s.late_days, s.late_deduction, s.status, s.payment_account_id,
	s.transaction_id, s.paid_date, s.paid_by, s.notes, s.created_by, s.created_at, s.updated_at,
	e.name, e.erp_id, pa.name`

const salaryFrom = `
	FROM salaries s
	LEFT JOIN employees e ON e.id = s.employee_id
	LEFT JOIN payment_accounts pa ON pa.id = s.payment_account_id`

func scanSalary(row pgx.Row) (salary.Salary, error) {
	var s salary.Salary
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Month, &s.Year, &s.BasicSalary, &s.Allowances, &s.Deductions,
		&s.NetSalary, &s.LateDays, &s.LateDeduction, &s.Status, &s.PaymentAccountID,
		&s.TransactionID, &s.PaidDate, &s.PaidBy, &s.Notes, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		&s.EmployeeName, &s.EmployeeERPID, &s.PaymentAccountName,
	)
	return s, err
}

// Create implements salary.SalaryRepository.
func (r *salaryRepository) Create(ctx context.Context, newSalary salary.Salary) (salary.Salary, error) {
	q := GetQuerier(ctx, r.db)

	month, err := clock.ParseMonth(newSalary.Month)
	if err != nil {
		return salary.Salary{}, salary.ErrInvalidMonth
	}
	id, err := uuid.NewV7()
	if err != nil {
		return salary.Salary{}, fmt.Errorf("failed to generate salary id: %w", err)
	}

	query := `
		INSERT INTO salaries (
			id, employee_id, month, month_number, year, basic_salary, allowances, deductions,
			net_salary, late_days, late_deduction, status, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = q.Exec(ctx, query,
		id.String(),
		newSalary.EmployeeID,
		month.String(),
		int(month),
		newSalary.Year,
		newSalary.BasicSalary,
		newSalary.Allowances,
		newSalary.Deductions,
		newSalary.NetSalary,
		newSalary.LateDays,
		newSalary.LateDeduction,
		salary.StatusUnpaid,
		newSalary.Notes,
		newSalary.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return salary.Salary{}, salary.ErrDuplicateSalaryRecord
		}
		return salary.Salary{}, fmt.Errorf("failed to create salary: %w", err)
	}

	return r.GetByID(ctx, id.String())
}

// GetByID implements salary.SalaryRepository.
func (r *salaryRepository) GetByID(ctx context.Context, id string) (salary.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryColumns + salaryFrom + ` WHERE s.id = $1`

	s, err := scanSalary(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Salary{}, salary.ErrSalaryNotFound
		}
		return salary.Salary{}, fmt.Errorf("failed to get salary by ID: %w", err)
	}
	return s, nil
}

// UpdateUnpaid implements salary.SalaryRepository.
func (r *salaryRepository) UpdateUnpaid(ctx context.Context, s salary.Salary) (salary.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salaries SET
			basic_salary = $2,
			allowances = $3,
			deductions = $4,
			net_salary = $5,
			late_days = $6,
			late_deduction = $7,
			notes = $8,
			updated_at = NOW()
		WHERE id = $1 AND status = 'Unpaid'
	`

	tag, err := q.Exec(ctx, query,
		s.ID, s.BasicSalary, s.Allowances, s.Deductions, s.NetSalary,
		s.LateDays, s.LateDeduction, s.Notes,
	)
	if err != nil {
		return salary.Salary{}, fmt.Errorf("failed to update salary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.Salary{}, r.conditionalMiss(ctx, s.ID, salary.ErrCannotModifyPaidRecord)
	}

	return r.GetByID(ctx, s.ID)
}

// MarkPaid implements salary.SalaryRepository.
func (r *salaryRepository) MarkPaid(ctx context.Context, id string, payment salary.PaymentDetails) (salary.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salaries SET
			status = 'Paid',
			payment_account_id = $2,
			transaction_id = $3,
			paid_date = $4,
			paid_by = $5,
			updated_at = NOW()
		WHERE id = $1 AND status = 'Unpaid'
	`

	tag, err := q.Exec(ctx, query, id, payment.PaymentAccountID, payment.TransactionID, payment.PaidDate, payment.PaidBy)
	if err != nil {
		return salary.Salary{}, fmt.Errorf("failed to mark salary paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.Salary{}, r.conditionalMiss(ctx, id, salary.ErrAlreadyPaid)
	}

	return r.GetByID(ctx, id)
}

// DeleteUnpaid implements salary.SalaryRepository.
func (r *salaryRepository) DeleteUnpaid(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salaries WHERE id = $1 AND status = 'Unpaid'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete salary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.conditionalMiss(ctx, id, salary.ErrCannotDeletePaidRecord)
	}
	return nil
}

// conditionalMiss explains why a write guarded on status = 'Unpaid' touched
// no row: the record is gone, or it is Paid.
func (r *salaryRepository) conditionalMiss(ctx context.Context, id string, paidErr error) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return paidErr
}

// List implements salary.SalaryRepository.
func (r *salaryRepository) List(ctx context.Context, filter salary.Filter) ([]salary.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryColumns + salaryFrom + ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Month != "" {
		query += fmt.Sprintf(" AND s.month = $%d", argIdx)
		args = append(args, filter.Month)
		argIdx++
	}
	if filter.Year != 0 {
		query += fmt.Sprintf(" AND s.year = $%d", argIdx)
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
	}
	query += " ORDER BY s.year DESC, s.month_number DESC, e.name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salaries: %w", err)
	}
	defer rows.Close()

	var salaries []salary.Salary
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary: %w", err)
		}
		salaries = append(salaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salaries: %w", err)
	}
	return salaries, nil
}
