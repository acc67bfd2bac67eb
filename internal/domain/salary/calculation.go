package salary

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

const (
	// DaysPerMonth is the fixed divisor for the daily rate, regardless of
	// the calendar length of the month.
	DaysPerMonth = 30

	// LatesPerDeductibleDay late marks collapse into one day's deduction.
	LatesPerDeductibleDay = 3
)

type Calculation struct {
	LateDays        int
	DeductibleDays  int
	DailyRate       decimal.Decimal
	DeductionAmount decimal.Decimal
}

// CalculateDeduction is a step function of lateCount: the amount only
// changes at multiples of LatesPerDeductibleDay and is never pro-rated.
func CalculateDeduction(baseSalary decimal.Decimal, lateCount int) Calculation {
	if lateCount < 0 {
		lateCount = 0
	}
	dailyRate := baseSalary.Div(decimal.NewFromInt(DaysPerMonth))
	days := lateCount / LatesPerDeductibleDay

	return Calculation{
		LateDays:        lateCount,
		DeductibleDays:  days,
		DailyRate:       dailyRate,
		DeductionAmount: dailyRate.Mul(decimal.NewFromInt(int64(days))).Round(0),
	}
}

// CountLate counts records whose status is Late.
func CountLate(records []attendance.Attendance) int {
	n := 0
	for _, r := range records {
		if r.Status == attendance.StatusLate {
			n++
		}
	}
	return n
}
