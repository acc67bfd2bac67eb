package cron

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
)

const (
	JobMonthlyPayroll      = "monthly_payroll"
	JobAttendanceRetention = "attendance_retention"
)

type Specs struct {
	Payroll   string
	Retention string
}

type PayrollJobs struct {
	salaryService     salary.SalaryService
	attendanceService attendance.AttendanceService
}

func NewPayrollJobs(salaryService salary.SalaryService, attendanceService attendance.AttendanceService) *PayrollJobs {
	return &PayrollJobs{
		salaryService:     salaryService,
		attendanceService: attendanceService,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, specs Specs) error {
	if err := scheduler.AddJob(JobMonthlyPayroll, specs.Payroll, j.GenerateMonthlyPayroll); err != nil {
		return err
	}
	return scheduler.AddJob(JobAttendanceRetention, specs.Retention, j.PurgeExpiredAttendance)
}

// GenerateMonthlyPayroll seeds the current month's salary records.
func (j *PayrollJobs) GenerateMonthlyPayroll(ctx context.Context) error {
	slog.Info("Cron: Starting monthly payroll job")

	result, err := j.salaryService.GenerateMonthly(ctx)
	if err != nil {
		return err
	}

	slog.Info("Cron: Monthly payroll generated",
		"month", result.Month,
		"year", result.Year,
		"created_count", result.CreatedCount,
		"skipped_count", result.SkippedCount,
	)
	return nil
}

func (j *PayrollJobs) PurgeExpiredAttendance(ctx context.Context) error {
	slog.Info("Cron: Starting attendance retention job")

	result, err := j.attendanceService.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	slog.Info("Cron: Attendance retention completed", "before", result.Before, "deleted_count", result.DeletedCount)
	return nil
}
