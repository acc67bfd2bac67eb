package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance records.
// Every store keeps a unique index on (employee_id, date).
type AttendanceRepository interface {
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns ErrAttendanceNotFound when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (Attendance, error)

	// CheckIn inserts the day's record, or fills an existing record that has
	// no check-in yet. It returns ErrAlreadyCheckedIn if a check-in exists.
	CheckIn(ctx context.Context, record Attendance) (Attendance, error)

	// CheckOut writes check-out fields only while check_out_time is empty.
	// It returns ErrAlreadyCheckedOut otherwise.
	CheckOut(ctx context.Context, record Attendance) (Attendance, error)

	// UpsertStatus creates the day's record or replaces its status.
	UpsertStatus(ctx context.Context, record Attendance) (Attendance, error)

	// ListByEmployee returns newest first. A limit <= 0 returns everything.
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]Attendance, error)

	// ListByEmployeeBetween returns records in [from, to], oldest first.
	ListByEmployeeBetween(ctx context.Context, employeeID string, from, to string) ([]Attendance, error)

	ListByDate(ctx context.Context, date string) ([]Attendance, error)

	SummarizeByEmployee(ctx context.Context, employeeID string) (Summary, error)
	SummarizeAll(ctx context.Context) ([]EmployeeSummary, error)

	// CountLate counts Late records whose date starts with monthPrefix (YYYY-MM).
	CountLate(ctx context.Context, employeeID string, monthPrefix string) (int, error)

	// DeleteBefore removes at most limit records dated before date and
	// reports how many were removed.
	DeleteBefore(ctx context.Context, date string, limit int) (int, error)
}
