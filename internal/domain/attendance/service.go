package attendance

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Mark performs a check-in or check-out for the employee at the current civil time
	Mark(ctx context.Context, employeeID string, req MarkRequest) (MarkResponse, error)

	History(ctx context.Context, employeeID string) ([]AttendanceResponse, error)
	MonthlyReport(ctx context.Context, req ReportRequest) (MonthlyReportResponse, error)

	// Today lists every record of the current civil date (admin)
	Today(ctx context.Context) ([]AttendanceResponse, error)
	EmployeeStats(ctx context.Context, employeeID string) (EmployeeStatsResponse, error)
	LifetimeStats(ctx context.Context) ([]EmployeeSummaryResponse, error)
	AbsenceWarnings(ctx context.Context) ([]AbsenceWarning, error)

	// OverrideStatus sets a day's status during payroll review
	OverrideStatus(ctx context.Context, actor activitylog.Actor, req OverrideStatusRequest) (AttendanceResponse, error)

	// PurgeExpired deletes records older than the retention period
	PurgeExpired(ctx context.Context) (PurgeResult, error)
}
