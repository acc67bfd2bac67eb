package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnpaid Status = "Unpaid"
	StatusPaid   Status = "Paid"
)

// ParseStatus accepts "Pending" as a legacy spelling of Unpaid.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "Unpaid", "Pending":
		return StatusUnpaid, nil
	case "Paid":
		return StatusPaid, nil
	}
	return "", ErrInvalidStatus
}

type Salary struct {
	ID               string
	EmployeeID       string
	Month            string // full English month name
	Year             int
	BasicSalary      decimal.Decimal
	Allowances       decimal.Decimal
	Deductions       decimal.Decimal
	NetSalary        decimal.Decimal
	LateDays         int
	LateDeduction    decimal.Decimal
	Status           Status
	PaymentAccountID *string
	TransactionID    *string
	PaidDate         *time.Time
	PaidBy           *string
	Notes            *string
	CreatedBy        *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName       *string
	EmployeeERPID      *string
	PaymentAccountName *string
}

// Recalculate restores NetSalary = BasicSalary + Allowances - Deductions.
func (s *Salary) Recalculate() {
	s.NetSalary = s.BasicSalary.Add(s.Allowances).Sub(s.Deductions)
}

func (s Salary) IsPaid() bool {
	return s.Status == StatusPaid
}

type PaymentDetails struct {
	PaymentAccountID string
	TransactionID    *string
	PaidDate         time.Time
	PaidBy           string
}

type Totals struct {
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
	RecordCount  int             `json:"record_count"`
}

func ComputeTotals(records []Salary) Totals {
	t := Totals{TotalPaid: decimal.Zero, TotalPending: decimal.Zero}
	for _, r := range records {
		t.RecordCount++
		switch r.Status {
		case StatusPaid:
			t.TotalPaid = t.TotalPaid.Add(r.NetSalary)
		case StatusUnpaid:
			t.TotalPending = t.TotalPending.Add(r.NetSalary)
		}
	}
	return t
}
