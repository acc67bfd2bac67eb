package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
	"github.com/shopspring/decimal"
)

// Notifier sends the payslip notice after a salary is paid.
type Notifier interface {
	SendSalaryPaid(ctx context.Context, to string, data email.SalaryPaidData) error
}

type SalaryServiceImpl struct {
	transactor     repository.Transactor
	salaryRepo     salary.SalaryRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	txRepo         ledger.TransactionRepository
	logRepo        activitylog.ActivityLogRepository
	ledgerService  ledger.LedgerService
	clock          clock.Clock
	notifier       Notifier
}

func NewSalaryService(
	transactor repository.Transactor,
	salaryRepo salary.SalaryRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	txRepo ledger.TransactionRepository,
	logRepo activitylog.ActivityLogRepository,
	ledgerService ledger.LedgerService,
	clk clock.Clock,
	notifier Notifier,
) salary.SalaryService {
	return &SalaryServiceImpl{
		transactor:     transactor,
		salaryRepo:     salaryRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		txRepo:         txRepo,
		logRepo:        logRepo,
		ledgerService:  ledgerService,
		clock:          clk,
		notifier:       notifier,
	}
}

// Calculate implements salary.SalaryService.
func (s *SalaryServiceImpl) Calculate(ctx context.Context, req salary.CalculationRequest) (salary.CalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.CalculationResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return salary.CalculationResponse{}, err
	}

	calc, err := s.calculate(ctx, emp.ID, emp.BaseSalary, req.Month, req.Year)
	if err != nil {
		return salary.CalculationResponse{}, err
	}

	return salary.CalculationResponse{
		EmployeeID:      emp.ID,
		Month:           req.Month,
		Year:            req.Year,
		LateDays:        calc.LateDays,
		DeductibleDays:  calc.DeductibleDays,
		DeductionAmount: calc.DeductionAmount,
		BasicSalary:     emp.BaseSalary,
		DailyRate:       calc.DailyRate.Round(0),
	}, nil
}

func (s *SalaryServiceImpl) calculate(ctx context.Context, employeeID string, base decimal.Decimal, monthName string, year int) (salary.Calculation, error) {
	month, err := clock.ParseMonth(monthName)
	if err != nil {
		return salary.Calculation{}, salary.ErrInvalidMonth
	}
	lates, err := s.attendanceRepo.CountLate(ctx, employeeID, fmt.Sprintf("%04d-%02d", year, int(month)))
	if err != nil {
		return salary.Calculation{}, fmt.Errorf("failed to count late attendance: %w", err)
	}
	return salary.CalculateDeduction(base, lates), nil
}

// Create implements salary.SalaryService.
func (s *SalaryServiceImpl) Create(ctx context.Context, actor activitylog.Actor, req salary.CreateSalaryRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	record := salary.Salary{
		EmployeeID:    emp.ID,
		Month:         req.Month,
		Year:          req.Year,
		BasicSalary:   valueOr(req.BasicSalary, emp.BaseSalary),
		Allowances:    valueOr(req.Allowances, decimal.Zero),
		LateDeduction: decimal.Zero,
		Status:        salary.StatusUnpaid,
		Notes:         req.Notes,
		CreatedBy:     actor.UserIDPtr(),
	}

	if req.LateDays == nil || req.LateDeduction == nil {
		calc, err := s.calculate(ctx, emp.ID, record.BasicSalary, req.Month, req.Year)
		if err != nil {
			return salary.SalaryResponse{}, err
		}
		record.LateDays = calc.LateDays
		record.LateDeduction = calc.DeductionAmount
	}
	if req.LateDays != nil {
		record.LateDays = *req.LateDays
	}
	if req.LateDeduction != nil {
		record.LateDeduction = *req.LateDeduction
	}
	record.Deductions = valueOr(req.Deductions, record.LateDeduction)
	record.Recalculate()

	var created salary.Salary
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.salaryRepo.Create(ctx, record)
		if err != nil {
			return err
		}
		return s.log(ctx, activitylog.Entry{
			Action:      activitylog.ActionCreate,
			TargetType:  activitylog.TargetSalary,
			TargetID:    &created.ID,
			Description: fmt.Sprintf("Created salary for %s (%s %d)", emp.Name, created.Month, created.Year),
			NewValue:    activitylog.Snapshot(salary.ToResponse(created)),
			PerformedBy: actor.PerformedBy("Admin"),
			UserID:      actor.UserIDPtr(),
		})
	})
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	return salary.ToResponse(created), nil
}

// Update implements salary.SalaryService.
func (s *SalaryServiceImpl) Update(ctx context.Context, actor activitylog.Actor, req salary.UpdateSalaryRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}

	var updated salary.Salary
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.salaryRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if current.IsPaid() {
			return salary.ErrCannotModifyPaidRecord
		}
		previous := salary.ToResponse(current)

		next := current
		next.BasicSalary = valueOr(req.BasicSalary, current.BasicSalary)
		next.Allowances = valueOr(req.Allowances, current.Allowances)
		next.Deductions = valueOr(req.Deductions, current.Deductions)
		next.LateDeduction = valueOr(req.LateDeduction, current.LateDeduction)
		if req.LateDays != nil {
			next.LateDays = *req.LateDays
		}
		if req.Notes != nil {
			next.Notes = req.Notes
		}
		next.Recalculate()

		updated, err = s.salaryRepo.UpdateUnpaid(ctx, next)
		if err != nil {
			return err
		}
		return s.log(ctx, activitylog.Entry{
			Action:        activitylog.ActionUpdate,
			TargetType:    activitylog.TargetSalary,
			TargetID:      &updated.ID,
			Description:   fmt.Sprintf("Updated salary for %s %d", updated.Month, updated.Year),
			PreviousValue: activitylog.Snapshot(previous),
			NewValue:      activitylog.Snapshot(salary.ToResponse(updated)),
			PerformedBy:   actor.PerformedBy("Admin"),
			UserID:        actor.UserIDPtr(),
		})
	})
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	return salary.ToResponse(updated), nil
}

// Pay implements salary.SalaryService.
func (s *SalaryServiceImpl) Pay(ctx context.Context, actor activitylog.Actor, req salary.PaySalaryRequest) (salary.PaySalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.PaySalaryResponse{}, err
	}

	paidBy := salary.DefaultPaidBy
	if req.PaidBy != nil && strings.TrimSpace(*req.PaidBy) != "" {
		paidBy = strings.TrimSpace(*req.PaidBy)
	}

	var (
		paid    salary.Salary
		account ledger.PaymentAccount
		txn     ledger.Transaction
	)
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.salaryRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if current.IsPaid() {
			return salary.ErrAlreadyPaid
		}

		account, err = s.ledgerService.ResolvePaymentAccount(ctx, actor, req.PaymentAccountID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		paid, err = s.salaryRepo.MarkPaid(ctx, current.ID, salary.PaymentDetails{
			PaymentAccountID: account.ID,
			TransactionID:    req.TransactionID,
			PaidDate:         now,
			PaidBy:           paidBy,
		})
		if err != nil {
			return err
		}

		txn, err = s.txRepo.Create(ctx, ledger.Transaction{
			Date:                  now,
			Amount:                paid.NetSalary,
			Purpose:               ledger.PurposeSalary,
			PaymentAccountID:      account.ID,
			ExternalTransactionID: req.TransactionID,
			Description:           fmt.Sprintf("Salary payment for %s %d", paid.Month, paid.Year),
			RelatedSalaryID:       &paid.ID,
			PaidBy:                &paidBy,
			CreatedBy:             actor.UserIDPtr(),
		})
		if err != nil {
			return err
		}

		return s.log(ctx, activitylog.Entry{
			Action:        activitylog.ActionPayment,
			TargetType:    activitylog.TargetSalary,
			TargetID:      &paid.ID,
			Description:   fmt.Sprintf("Paid salary for %s %d via %s", paid.Month, paid.Year, account.Name),
			PreviousValue: activitylog.Snapshot(map[string]any{"status": current.Status}),
			NewValue: activitylog.Snapshot(map[string]any{
				"status":             paid.Status,
				"payment_account_id": account.ID,
				"transaction_id":     req.TransactionID,
				"paid_by":            paidBy,
				"amount":             paid.NetSalary,
			}),
			PerformedBy: actor.PerformedBy(paidBy),
			UserID:      actor.UserIDPtr(),
		})
	})
	if err != nil {
		return salary.PaySalaryResponse{}, err
	}

	slog.Info("Salary paid",
		"salary_id", paid.ID,
		"employee_id", paid.EmployeeID,
		"amount", paid.NetSalary.String(),
		"payment_account", account.Name,
	)
	s.sendPayslip(ctx, paid, account)

	return salary.PaySalaryResponse{
		Salary:      salary.ToResponse(paid),
		Transaction: ledger.ToTransactionResponse(txn),
	}, nil
}

// sendPayslip is best-effort: the payment is already committed.
func (s *SalaryServiceImpl) sendPayslip(ctx context.Context, paid salary.Salary, account ledger.PaymentAccount) {
	if s.notifier == nil {
		return
	}
	emp, err := s.employeeRepo.GetByID(ctx, paid.EmployeeID)
	if err != nil {
		slog.Warn("Failed to load employee for payslip", "salary_id", paid.ID, "error", err)
		return
	}
	if emp.Email == "" {
		return
	}

	data := email.SalaryPaidData{
		EmployeeName:   emp.Name,
		Month:          paid.Month,
		Year:           paid.Year,
		BasicSalary:    paid.BasicSalary.StringFixed(2),
		Allowances:     paid.Allowances.StringFixed(2),
		Deductions:     paid.Deductions.StringFixed(2),
		NetSalary:      paid.NetSalary.StringFixed(2),
		PaymentAccount: account.Name,
	}
	if paid.TransactionID != nil {
		data.TransactionID = *paid.TransactionID
	}
	if paid.PaidDate != nil {
		data.PaidDate = paid.PaidDate.In(s.clock.Now().Location()).Format(clock.DateLayout)
	}

	if err := s.notifier.SendSalaryPaid(ctx, emp.Email, data); err != nil {
		slog.Warn("Failed to send payslip email", "salary_id", paid.ID, "to", emp.Email, "error", err)
	}
}

// Delete implements salary.SalaryService.
func (s *SalaryServiceImpl) Delete(ctx context.Context, actor activitylog.Actor, id string) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.salaryRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.IsPaid() {
			return salary.ErrCannotDeletePaidRecord
		}
		if err := s.salaryRepo.DeleteUnpaid(ctx, id); err != nil {
			return err
		}
		return s.log(ctx, activitylog.Entry{
			Action:        activitylog.ActionDelete,
			TargetType:    activitylog.TargetSalary,
			TargetID:      &current.ID,
			Description:   fmt.Sprintf("Deleted salary for %s %d", current.Month, current.Year),
			PreviousValue: activitylog.Snapshot(salary.ToResponse(current)),
			PerformedBy:   actor.PerformedBy("Admin"),
			UserID:        actor.UserIDPtr(),
		})
	})
}

// GetByID implements salary.SalaryService.
func (s *SalaryServiceImpl) GetByID(ctx context.Context, id string) (salary.SalaryResponse, error) {
	record, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return salary.SalaryResponse{}, err
	}
	return salary.ToResponse(record), nil
}

// List implements salary.SalaryService.
func (s *SalaryServiceImpl) List(ctx context.Context, filter salary.Filter) (salary.ListSalaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return salary.ListSalaryResponse{}, err
	}

	records, err := s.salaryRepo.List(ctx, filter)
	if err != nil {
		return salary.ListSalaryResponse{}, err
	}
	totals := salary.ComputeTotals(records)

	return salary.ListSalaryResponse{
		Count:        totals.RecordCount,
		TotalPaid:    totals.TotalPaid,
		TotalPending: totals.TotalPending,
		Salaries:     salary.ToResponses(records),
	}, nil
}

// EmployeeOverview implements salary.SalaryService.
func (s *SalaryServiceImpl) EmployeeOverview(ctx context.Context, employeeID string) (salary.EmployeeOverviewResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return salary.EmployeeOverviewResponse{}, err
	}

	records, err := s.salaryRepo.List(ctx, salary.Filter{EmployeeID: employeeID})
	if err != nil {
		return salary.EmployeeOverviewResponse{}, err
	}

	return salary.EmployeeOverviewResponse{
		Salaries: salary.ToResponses(records),
		Stats:    salary.ComputeTotals(records),
	}, nil
}

// OverallStats implements salary.SalaryService.
func (s *SalaryServiceImpl) OverallStats(ctx context.Context) ([]salary.EmployeeSalaryStats, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.salaryRepo.List(ctx, salary.Filter{})
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string][]salary.Salary, len(employees))
	for _, r := range records {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	stats := make([]salary.EmployeeSalaryStats, 0, len(employees))
	for _, emp := range employees {
		totals := salary.ComputeTotals(byEmployee[emp.ID])
		stats = append(stats, salary.EmployeeSalaryStats{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			ERPID:        emp.ERPID,
			BasicSalary:  emp.BaseSalary,
			JoinDate:     emp.CreatedAt.Format(clock.DateLayout),
			TotalPaid:    totals.TotalPaid,
			TotalPending: totals.TotalPending,
			RecordCount:  totals.RecordCount,
		})
	}
	return stats, nil
}

// GenerateMonthly implements salary.SalaryService.
func (s *SalaryServiceImpl) GenerateMonthly(ctx context.Context) (salary.MonthlyBatchResult, error) {
	month, year := s.clock.MonthYear()
	result := salary.MonthlyBatchResult{Month: month.String(), Year: year}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list active employees: %w", err)
	}

	var errs []error
	for _, emp := range employees {
		record := salary.Salary{
			EmployeeID:    emp.ID,
			Month:         result.Month,
			Year:          year,
			BasicSalary:   emp.BaseSalary,
			Allowances:    decimal.Zero,
			Deductions:    decimal.Zero,
			LateDeduction: decimal.Zero,
			Status:        salary.StatusUnpaid,
		}
		record.Recalculate()

		if _, err := s.salaryRepo.Create(ctx, record); err != nil {
			if errors.Is(err, salary.ErrDuplicateSalaryRecord) {
				result.SkippedCount++
				continue
			}
			slog.Error("Failed to generate salary", "employee_id", emp.ID, "month", result.Month, "year", year, "error", err)
			errs = append(errs, fmt.Errorf("employee %s: %w", emp.ID, err))
			continue
		}
		result.CreatedCount++
	}

	system := activitylog.SystemActor()
	if err := s.log(ctx, activitylog.Entry{
		Action:      activitylog.ActionSystem,
		TargetType:  activitylog.TargetSalary,
		Description: fmt.Sprintf("Monthly payroll generated for %s %d: %d created, %d skipped", result.Month, year, result.CreatedCount, result.SkippedCount),
		NewValue:    activitylog.Snapshot(result),
		PerformedBy: system.PerformedBy("System"),
	}); err != nil {
		errs = append(errs, err)
	}

	slog.Info("Monthly payroll generated",
		"month", result.Month,
		"year", year,
		"created_count", result.CreatedCount,
		"skipped_count", result.SkippedCount,
	)
	return result, errors.Join(errs...)
}

func (s *SalaryServiceImpl) log(ctx context.Context, entry activitylog.Entry) error {
	if _, err := s.logRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
