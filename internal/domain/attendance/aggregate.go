package attendance

import (
	"cmp"
	"slices"
)

// DefaultStreakWindow is how many recent records the absence scan looks at.
const DefaultStreakWindow = 10

// Summarize counts statuses and sums marks and overtime over records.
func Summarize(records []Attendance) Summary {
	var s Summary
	for _, r := range records {
		s.Records++
		switch r.Status {
		case StatusPresent:
			s.Present++
		case StatusLate:
			s.Late++
		case StatusAbsent:
			s.Absent++
		case StatusOff:
			s.Off++
		}
		if r.CountsAsHalfDay() {
			s.HalfDay++
		}
		if r.EarlyLeaveMarks > 0 {
			s.EarlyLeave++
		}
		s.TotalLateMarks += r.LateMarks
		s.TotalEarlyLeaveMarks += r.EarlyLeaveMarks
		s.OvertimeMinutes += r.OvertimeMinutes
	}
	return s
}

// AbsenceStreak counts consecutive Absent records from the newest one
// backwards. Off days are skipped without breaking the streak; any other
// status ends it. The input order is not trusted.
func AbsenceStreak(records []Attendance) int {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Attendance) int {
		return cmp.Compare(b.Date, a.Date)
	})

	streak := 0
	for _, r := range sorted {
		switch r.Status {
		case StatusAbsent:
			streak++
		case StatusOff:
			continue
		default:
			return streak
		}
	}
	return streak
}

func ClassifyStreak(streak int) WarningLevel {
	switch {
	case streak >= 3:
		return Disciplinary
	case streak >= 2:
		return Warning
	default:
		return NoWarning
	}
}
