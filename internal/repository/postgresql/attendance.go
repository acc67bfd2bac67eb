package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date::text, a.check_in_time::text, a.check_out_time::text,
	a.status, a.is_half_day, a.late_marks, a.early_leave_marks, a.overtime_minutes,
	a.created_at, a.updated_at`

func scanAttendance(row pgx.Row, extra ...any) (attendance.Attendance, error) {
	var att attendance.Attendance
	dest := []any{
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckInTime, &att.CheckOutTime,
		&att.Status, &att.IsHalfDay, &att.LateMarks, &att.EarlyLeaveMarks, &att.OvertimeMinutes,
		&att.CreatedAt, &att.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return att, err
}

func collectAttendance(rows pgx.Rows, withEmployee bool) ([]attendance.Attendance, error) {
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var (
			att  attendance.Attendance
			err  error
			name *string
			erp  *string
		)
		if withEmployee {
			att, err = scanAttendance(rows, &name, &erp)
			att.EmployeeName, att.EmployeeERPID = name, erp
		} else {
			att, err = scanAttendance(rows)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}
	return records, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance a WHERE a.id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance a
		WHERE a.employee_id = $1 AND a.date = $2::date`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return att, nil
}

// CheckIn implements attendance.AttendanceRepository.
//
// A row created by a status override has no check-in yet and is filled in;
// ON CONFLICT ... WHERE leaves any other existing row untouched, which
// surfaces as no row returned.
func (r *attendanceRepository) CheckIn(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendance AS a (
			id, employee_id, date, check_in_time, status, is_half_day, late_marks
		) VALUES ($1, $2, $3::date, $4::time, $5, $6, $7)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			check_in_time = EXCLUDED.check_in_time,
			status = EXCLUDED.status,
			is_half_day = EXCLUDED.is_half_day,
			late_marks = EXCLUDED.late_marks,
			updated_at = NOW()
		WHERE a.check_in_time IS NULL
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		id.String(),
		record.EmployeeID,
		record.Date,
		record.CheckInTime,
		record.Status,
		record.IsHalfDay,
		record.LateMarks,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to check in: %w", err)
	}
	return att, nil
}

// CheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) CheckOut(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance AS a SET
			check_out_time = $2::time,
			status = $3,
			is_half_day = $4,
			early_leave_marks = $5,
			overtime_minutes = $6,
			updated_at = NOW()
		WHERE a.id = $1
		  AND a.check_in_time IS NOT NULL
		  AND a.check_out_time IS NULL
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID,
		record.CheckOutTime,
		record.Status,
		record.IsHalfDay,
		record.EarlyLeaveMarks,
		record.OvertimeMinutes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("failed to check out: %w", err)
	}
	return att, nil
}

// UpsertStatus implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpsertStatus(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendance AS a (id, employee_id, date, status, is_half_day)
		VALUES ($1, $2, $3::date, $4, $5)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			is_half_day = EXCLUDED.is_half_day,
			updated_at = NOW()
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		id.String(), record.EmployeeID, record.Date, record.Status, record.IsHalfDay,
	))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance status: %w", err)
	}
	return att, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance a
		WHERE a.employee_id = $1
		ORDER BY a.date DESC`
	args := []interface{}{employeeID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return collectAttendance(rows, false)
}

// ListByEmployeeBetween implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployeeBetween(ctx context.Context, employeeID string, from, to string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance a
		WHERE a.employee_id = $1
		  AND a.date BETWEEN $2::date AND $3::date
		ORDER BY a.date ASC`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}
	return collectAttendance(rows, false)
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `, e.name, e.erp_id
		FROM attendance a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.date = $1::date
		ORDER BY a.check_in_time ASC NULLS LAST`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by date: %w", err)
	}
	return collectAttendance(rows, true)
}

const summaryColumns = `
	COUNT(*) FILTER (WHERE status = 'Present'),
	COUNT(*) FILTER (WHERE status = 'Late'),
	COUNT(*) FILTER (WHERE status = 'Half-Day' OR is_half_day),
	COUNT(*) FILTER (WHERE status = 'Absent'),
	COUNT(*) FILTER (WHERE status = 'Off'),
	COUNT(*) FILTER (WHERE early_leave_marks > 0),
	COALESCE(SUM(late_marks), 0),
	COALESCE(SUM(early_leave_marks), 0),
	COALESCE(SUM(overtime_minutes), 0),
	COUNT(*)`

func summaryDest(s *attendance.Summary) []any {
	return []any{
		&s.Present, &s.Late, &s.HalfDay, &s.Absent, &s.Off, &s.EarlyLeave,
		&s.TotalLateMarks, &s.TotalEarlyLeaveMarks, &s.OvertimeMinutes, &s.Records,
	}
}

// SummarizeByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) SummarizeByEmployee(ctx context.Context, employeeID string) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + ` FROM attendance WHERE employee_id = $1`

	var s attendance.Summary
	if err := q.QueryRow(ctx, query, employeeID).Scan(summaryDest(&s)...); err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	return s, nil
}

// SummarizeAll implements attendance.AttendanceRepository.
func (r *attendanceRepository) SummarizeAll(ctx context.Context) ([]attendance.EmployeeSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT employee_id, ` + summaryColumns + `
		FROM attendance
		GROUP BY employee_id
		ORDER BY employee_id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	defer rows.Close()

	var out []attendance.EmployeeSummary
	for rows.Next() {
		var es attendance.EmployeeSummary
		dest := append([]any{&es.EmployeeID}, summaryDest(&es.Summary)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		out = append(out, es)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance summary: %w", err)
	}
	return out, nil
}

// CountLate implements attendance.AttendanceRepository.
func (r *attendanceRepository) CountLate(ctx context.Context, employeeID string, monthPrefix string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM attendance
		WHERE employee_id = $1
		  AND status = 'Late'
		  AND to_char(date, 'YYYY-MM') = $2`

	var n int
	if err := q.QueryRow(ctx, query, employeeID, monthPrefix).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count late attendance: %w", err)
	}
	return n, nil
}

// DeleteBefore implements attendance.AttendanceRepository.
func (r *attendanceRepository) DeleteBefore(ctx context.Context, date string, limit int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM attendance
		WHERE id IN (
			SELECT id FROM attendance
			WHERE date < $1::date
			ORDER BY date
			LIMIT $2
		)`

	tag, err := q.Exec(ctx, query, date, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired attendance: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
