package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
)

// recentWindow is how many records EmployeeStats reports as "recent".
const recentWindow = 30

type Options struct {
	// StreakWindow is how many recent records an absence streak is read from.
	StreakWindow int
	// RetentionMonths is the age after which records are purged.
	RetentionMonths int
	// RetentionBatch caps how many records one delete statement removes.
	RetentionBatch int
}

func (o Options) withDefaults() Options {
	if o.StreakWindow <= 0 {
		o.StreakWindow = attendance.DefaultStreakWindow
	}
	if o.RetentionMonths <= 0 {
		o.RetentionMonths = 6
	}
	if o.RetentionBatch <= 0 {
		o.RetentionBatch = 500
	}
	return o
}

type AttendanceServiceImpl struct {
	transactor     repository.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	logRepo        activitylog.ActivityLogRepository
	clock          clock.Clock
	opts           Options
}

func NewAttendanceService(
	transactor repository.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	logRepo activitylog.ActivityLogRepository,
	clk clock.Clock,
	opts Options,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		transactor:     transactor,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		logRepo:        logRepo,
		clock:          clk,
		opts:           opts.withDefaults(),
	}
}

// Mark implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Mark(ctx context.Context, employeeID string, req attendance.MarkRequest) (attendance.MarkResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MarkResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return attendance.MarkResponse{}, err
	}

	stamp := s.clock.Stamp()

	var (
		record attendance.Attendance
		err    error
	)
	switch attendance.Action(req.Action) {
	case attendance.ActionCheckIn:
		record, err = s.checkIn(ctx, employeeID, stamp)
	case attendance.ActionCheckOut:
		record, err = s.checkOut(ctx, employeeID, stamp)
	default:
		return attendance.MarkResponse{}, attendance.ErrInvalidAction
	}
	if err != nil {
		return attendance.MarkResponse{}, err
	}

	slog.Info("Attendance marked",
		"employee_id", employeeID,
		"action", req.Action,
		"date", stamp.Date,
		"time", stamp.Time,
		"status", record.Status,
	)

	return attendance.MarkResponse{
		Action:          req.Action,
		Date:            record.Date,
		Time:            stamp.Time,
		Status:          string(record.Status),
		IsHalfDay:       record.IsHalfDay,
		LateMarks:       record.LateMarks,
		EarlyLeaveMarks: record.EarlyLeaveMarks,
		OvertimeMinutes: record.OvertimeMinutes,
	}, nil
}

func (s *AttendanceServiceImpl) checkIn(ctx context.Context, employeeID string, stamp clock.Stamp) (attendance.Attendance, error) {
	outcome, err := attendance.ClassifyCheckIn(stamp.Time)
	if err != nil {
		return attendance.Attendance{}, err
	}

	checkInTime := stamp.Time
	record := attendance.Attendance{
		EmployeeID:  employeeID,
		Date:        stamp.Date,
		CheckInTime: &checkInTime,
		LateMarks:   outcome.LateMarks,
	}
	record.SetStatus(outcome.Status)

	return s.attendanceRepo.CheckIn(ctx, record)
}

func (s *AttendanceServiceImpl) checkOut(ctx context.Context, employeeID string, stamp clock.Stamp) (attendance.Attendance, error) {
	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, stamp.Date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, attendance.ErrMustCheckInFirst
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if !record.HasCheckedIn() {
		return attendance.Attendance{}, attendance.ErrMustCheckInFirst
	}
	if record.HasCheckedOut() {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	outcome, err := attendance.ClassifyCheckOut(stamp.Time, record.Status)
	if err != nil {
		return attendance.Attendance{}, err
	}

	checkOutTime := stamp.Time
	record.CheckOutTime = &checkOutTime
	record.SetStatus(outcome.Status)
	record.EarlyLeaveMarks = outcome.EarlyLeaveMarks
	record.OvertimeMinutes = outcome.OvertimeMinutes

	return s.attendanceRepo.CheckOut(ctx, record)
}

// History implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) History(ctx context.Context, employeeID string) ([]attendance.AttendanceResponse, error) {
	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, 0)
	if err != nil {
		return nil, err
	}
	return attendance.ToResponses(records), nil
}

// MonthlyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MonthlyReport(ctx context.Context, req attendance.ReportRequest) (attendance.MonthlyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyReportResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.MonthlyReportResponse{}, err
	}

	month, err := clock.ParseMonth(req.Month)
	if err != nil {
		return attendance.MonthlyReportResponse{}, err
	}
	from, to := clock.MonthRange(req.Year, month)

	records, err := s.attendanceRepo.ListByEmployeeBetween(ctx, emp.ID, from, to)
	if err != nil {
		return attendance.MonthlyReportResponse{}, err
	}

	return attendance.MonthlyReportResponse{
		Employee: employee.ToBrief(emp),
		Month:    month.String(),
		Year:     req.Year,
		Stats:    attendance.Summarize(records),
		Records:  attendance.ToResponses(records),
	}, nil
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context) ([]attendance.AttendanceResponse, error) {
	records, err := s.attendanceRepo.ListByDate(ctx, s.clock.Today())
	if err != nil {
		return nil, err
	}
	return attendance.ToResponses(records), nil
}

// EmployeeStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EmployeeStats(ctx context.Context, employeeID string) (attendance.EmployeeStatsResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.EmployeeStatsResponse{}, err
	}

	recent, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, recentWindow)
	if err != nil {
		return attendance.EmployeeStatsResponse{}, err
	}
	lifetime, err := s.attendanceRepo.SummarizeByEmployee(ctx, employeeID)
	if err != nil {
		return attendance.EmployeeStatsResponse{}, err
	}

	return attendance.EmployeeStatsResponse{
		Employee: employee.ToBrief(emp),
		Recent:   attendance.Summarize(recent),
		Lifetime: lifetime,
		Records:  attendance.ToResponses(recent),
	}, nil
}

// LifetimeStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) LifetimeStats(ctx context.Context) ([]attendance.EmployeeSummaryResponse, error) {
	summaries, err := s.attendanceRepo.SummarizeAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]attendance.EmployeeSummaryResponse, 0, len(summaries))
	for _, es := range summaries {
		out = append(out, attendance.EmployeeSummaryResponse{EmployeeID: es.EmployeeID, Summary: es.Summary})
	}
	return out, nil
}

// AbsenceWarnings implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AbsenceWarnings(ctx context.Context) ([]attendance.AbsenceWarning, error) {
	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	warnings := []attendance.AbsenceWarning{}
	for _, emp := range employees {
		recent, err := s.attendanceRepo.ListByEmployee(ctx, emp.ID, s.opts.StreakWindow)
		if err != nil {
			return nil, err
		}
		streak := attendance.AbsenceStreak(recent)
		level := attendance.ClassifyStreak(streak)
		if level == attendance.NoWarning {
			continue
		}
		warnings = append(warnings, attendance.AbsenceWarning{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			ERPID:        emp.ERPID,
			Streak:       streak,
			Level:        level,
		})
	}
	return warnings, nil
}

// OverrideStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) OverrideStatus(ctx context.Context, actor activitylog.Actor, req attendance.OverrideStatusRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	status := attendance.Status(req.Status)
	if !status.IsValid() {
		return attendance.AttendanceResponse{}, attendance.ErrInvalidStatus
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var saved attendance.Attendance
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var previous any
		existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, req.Date)
		switch {
		case err == nil:
			previous = map[string]any{"status": existing.Status, "is_half_day": existing.IsHalfDay}
		case !errors.Is(err, attendance.ErrAttendanceNotFound):
			return err
		}

		record := attendance.Attendance{EmployeeID: req.EmployeeID, Date: req.Date}
		record.SetStatus(status)
		saved, err = s.attendanceRepo.UpsertStatus(ctx, record)
		if err != nil {
			return err
		}

		entry := activitylog.Entry{
			Action:      activitylog.ActionUpdate,
			TargetType:  activitylog.TargetAttendance,
			TargetID:    &saved.ID,
			Description: fmt.Sprintf("Attendance for %s set to %s", req.Date, status),
			NewValue:    activitylog.Snapshot(map[string]any{"status": saved.Status, "is_half_day": saved.IsHalfDay}),
			PerformedBy: actor.PerformedBy("Admin"),
			UserID:      actor.UserIDPtr(),
		}
		if previous != nil {
			entry.PreviousValue = activitylog.Snapshot(previous)
		}
		if _, err := s.logRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to write activity log: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(saved), nil
}

// PurgeExpired implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PurgeExpired(ctx context.Context) (attendance.PurgeResult, error) {
	before := s.clock.MonthsAgo(s.opts.RetentionMonths)
	result := attendance.PurgeResult{Before: before}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		n, err := s.attendanceRepo.DeleteBefore(ctx, before, s.opts.RetentionBatch)
		if err != nil {
			return result, err
		}
		if n == 0 {
			break
		}
		result.DeletedCount += n
	}

	slog.Info("Purged expired attendance", "before", before, "deleted_count", result.DeletedCount)
	return result, nil
}
