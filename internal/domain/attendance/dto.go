package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// ========== MARK DTOs ==========

type MarkRequest struct {
	Action string `json:"action" validate:"required"`
}

func (r *MarkRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	switch Action(r.Action) {
	case ActionCheckIn, ActionCheckOut:
		return nil
	}
	return ErrInvalidAction
}

type MarkResponse struct {
	Action          string `json:"action"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Status          string `json:"status"`
	IsHalfDay       bool   `json:"is_half_day"`
	LateMarks       int    `json:"late_marks"`
	EarlyLeaveMarks int    `json:"early_leave_marks"`
	OvertimeMinutes int    `json:"overtime_minutes"`
}

// ========== ADMIN DTOs ==========

type OverrideStatusRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,civildate"`
	Status     string `json:"status" validate:"required,oneof=Present Late Half-Day Absent Off"`
}

func (r *OverrideStatusRequest) Validate() error {
	return validator.Struct(r)
}

type ReportRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Month      string `json:"month" validate:"required"`
	Year       int    `json:"year" validate:"required,min=2000,max=2100"`
}

func (r *ReportRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	m, err := clock.ParseMonth(r.Month)
	if err != nil {
		return validator.ValidationErrors{{Field: "month", Message: "must be a full English month name"}}
	}
	r.Month = m.String()
	return nil
}

type AttendanceResponse struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employee_id"`
	EmployeeName    *string   `json:"employee_name,omitempty"`
	EmployeeERPID   *string   `json:"employee_erp_id,omitempty"`
	Date            string    `json:"date"`
	CheckInTime     *string   `json:"check_in_time,omitempty"`
	CheckOutTime    *string   `json:"check_out_time,omitempty"`
	Status          string    `json:"status"`
	IsHalfDay       bool      `json:"is_half_day"`
	LateMarks       int       `json:"late_marks"`
	EarlyLeaveMarks int       `json:"early_leave_marks"`
	OvertimeMinutes int       `json:"overtime_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		EmployeeERPID:   a.EmployeeERPID,
		Date:            a.Date,
		CheckInTime:     a.CheckInTime,
		CheckOutTime:    a.CheckOutTime,
		Status:          string(a.Status),
		IsHalfDay:       a.IsHalfDay,
		LateMarks:       a.LateMarks,
		EarlyLeaveMarks: a.EarlyLeaveMarks,
		OvertimeMinutes: a.OvertimeMinutes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func ToResponses(records []Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToResponse(r))
	}
	return out
}

type EmployeeStatsResponse struct {
	Employee employee.EmployeeBrief `json:"employee"`
	Recent   Summary                `json:"recent"`
	Lifetime Summary                `json:"lifetime"`
	Records  []AttendanceResponse   `json:"records"`
}

type EmployeeSummaryResponse struct {
	EmployeeID string `json:"employee_id"`
	Summary
}

type AbsenceWarning struct {
	EmployeeID   string       `json:"employee_id"`
	EmployeeName string       `json:"employee_name"`
	ERPID        *string      `json:"erp_id,omitempty"`
	Streak       int          `json:"consecutive_absences"`
	Level        WarningLevel `json:"warning_level"`
}

type MonthlyReportResponse struct {
	Employee employee.EmployeeBrief `json:"employee"`
	Month    string                 `json:"month"`
	Year     int                    `json:"year"`
	Stats    Summary                `json:"stats"`
	Records  []AttendanceResponse   `json:"records"`
}

type PurgeResult struct {
	Before       string `json:"before"`
	DeletedCount int    `json:"deleted_count"`
}
