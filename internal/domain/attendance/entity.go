package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusHalfDay Status = "Half-Day"
	StatusAbsent  Status = "Absent"
	StatusOff     Status = "Off"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay, StatusAbsent, StatusOff:
		return true
	}
	return false
}

type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

type Attendance struct {
	ID              string
	EmployeeID      string
	Date            string // YYYY-MM-DD in the civil time zone
	CheckInTime     *string
	CheckOutTime    *string
	Status          Status
	IsHalfDay       bool
	LateMarks       int
	EarlyLeaveMarks int
	OvertimeMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	EmployeeName  *string
	EmployeeERPID *string
}

// SetStatus is the only writer of IsHalfDay.
func (a *Attendance) SetStatus(s Status) {
	a.Status = s
	a.IsHalfDay = s == StatusHalfDay
}

// CountsAsHalfDay tolerates rows where only one of the two fields was written.
func (a Attendance) CountsAsHalfDay() bool {
	return a.Status == StatusHalfDay || a.IsHalfDay
}

func (a Attendance) HasCheckedIn() bool {
	return a.CheckInTime != nil && *a.CheckInTime != ""
}

func (a Attendance) HasCheckedOut() bool {
	return a.CheckOutTime != nil && *a.CheckOutTime != ""
}

// Summary aggregates a set of attendance records.
type Summary struct {
	Present              int `json:"present"`
	Late                 int `json:"late"`
	HalfDay              int `json:"half_day"`
	Absent               int `json:"absent"`
	Off                  int `json:"off"`
	EarlyLeave           int `json:"early_leave"`
	TotalLateMarks       int `json:"total_late_marks"`
	TotalEarlyLeaveMarks int `json:"total_early_leave_marks"`
	OvertimeMinutes      int `json:"overtime_minutes"`
	Records              int `json:"records"`
}

type EmployeeSummary struct {
	EmployeeID string
	Summary    Summary
}

type WarningLevel string

const (
	NoWarning    WarningLevel = ""
	Warning      WarningLevel = "Warning"
	Disciplinary WarningLevel = "Disciplinary"
)
