package salary

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
)

type SalaryService interface {
	Calculate(ctx context.Context, req CalculationRequest) (CalculationResponse, error)

	Create(ctx context.Context, actor activitylog.Actor, req CreateSalaryRequest) (SalaryResponse, error)
	Update(ctx context.Context, actor activitylog.Actor, req UpdateSalaryRequest) (SalaryResponse, error)
	Pay(ctx context.Context, actor activitylog.Actor, req PaySalaryRequest) (PaySalaryResponse, error)
	Delete(ctx context.Context, actor activitylog.Actor, id string) error

	GetByID(ctx context.Context, id string) (SalaryResponse, error)
	List(ctx context.Context, filter Filter) (ListSalaryResponse, error)
	EmployeeOverview(ctx context.Context, employeeID string) (EmployeeOverviewResponse, error)
	OverallStats(ctx context.Context) ([]EmployeeSalaryStats, error)

	// GenerateMonthly seeds one Unpaid record per active employee for the
	// current civil month. Re-running it in the same month creates nothing.
	GenerateMonthly(ctx context.Context) (MonthlyBatchResult, error)
}
