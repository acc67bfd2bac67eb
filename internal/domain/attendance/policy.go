package attendance

import (
	"fmt"
	"time"
)

// Minute-of-day thresholds of the office policy.
const (
	graceEndMinute      = 9*60 + 10  // 09:10, last Present minute
	lateEndMinute       = 9*60 + 30  // 09:30, last Late minute
	halfDayEndMinute    = 13 * 60    // 13:00, last Half-Day minute at check-in
	halfDayLeaveMinute  = 16 * 60    // 16:00, leaving earlier is a Half-Day
	earlyLeaveEndMinute = 17*60 + 45 // 17:45, leaving earlier is an early leave
	officeEndMinute     = 18 * 60    // 18:00, overtime starts after this
)

type CheckInOutcome struct {
	Status    Status
	LateMarks int
	IsHalfDay bool
}

type CheckOutOutcome struct {
	Status          Status
	IsHalfDay       bool
	EarlyLeaveMarks int
	OvertimeMinutes int
}

// MinuteOfDay parses an HH:mm:ss wall-clock time. Seconds are ignored.
func MinuteOfDay(timeOfDay string) (int, error) {
	t, err := time.Parse("15:04:05", timeOfDay)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, timeOfDay)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClassifyCheckIn maps a check-in time to the day's status.
// Each boundary minute belongs to the lower classification.
func ClassifyCheckIn(timeOfDay string) (CheckInOutcome, error) {
	m, err := MinuteOfDay(timeOfDay)
	if err != nil {
		return CheckInOutcome{}, err
	}

	switch {
	case m <= graceEndMinute:
		return CheckInOutcome{Status: StatusPresent}, nil
	case m <= lateEndMinute:
		return CheckInOutcome{Status: StatusLate, LateMarks: 1}, nil
	case m <= halfDayEndMinute:
		return CheckInOutcome{Status: StatusHalfDay, IsHalfDay: true}, nil
	default:
		return CheckInOutcome{Status: StatusAbsent}, nil
	}
}

// ClassifyCheckOut revises the day's status at check-out. It can only worsen
// or confirm prior; overtime is computed independently of the status branch.
func ClassifyCheckOut(timeOfDay string, prior Status) (CheckOutOutcome, error) {
	m, err := MinuteOfDay(timeOfDay)
	if err != nil {
		return CheckOutOutcome{}, err
	}

	out := CheckOutOutcome{
		Status:    prior,
		IsHalfDay: prior == StatusHalfDay,
	}

	switch {
	case m < halfDayLeaveMinute:
		out.Status = StatusHalfDay
		out.IsHalfDay = true
	case m < earlyLeaveEndMinute:
		if prior != StatusHalfDay && prior != StatusAbsent {
			out.EarlyLeaveMarks = 1
		}
	}

	if m > officeEndMinute {
		out.OvertimeMinutes = m - officeEndMinute
	}

	return out, nil
}
