package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnpaid(employeeID, month string, year int, base int64) salary.Salary {
	s := salary.Salary{
		EmployeeID:    employeeID,
		Month:         month,
		Year:          year,
		BasicSalary:   decimal.NewFromInt(base),
		Allowances:    decimal.Zero,
		Deductions:    decimal.Zero,
		LateDeduction: decimal.Zero,
	}
	s.Recalculate()
	return s
}

func TestSalaryRepository_UniquePeriod(t *testing.T) {
	db := openTestDB(t)
	truncateAll(t, db)
	ctx := context.Background()
	repo := postgresql.NewSalaryRepository(db)
	empID := createTestEmployee(t, db, "Hina", 30000, "Active")

	created, err := repo.Create(ctx, newUnpaid(empID, "March", 2025, 30000))
	require.NoError(t, err)
	assert.Equal(t, salary.StatusUnpaid, created.Status)
	require.NotNil(t, created.EmployeeName)
	assert.Equal(t, "Hina", *created.EmployeeName)

	_, err = repo.Create(ctx, newUnpaid(empID, "March", 2025, 30000))
	assert.ErrorIs(t, err, salary.ErrDuplicateSalaryRecord)
}

func TestSalaryRepository_PaidIsTerminal(t *testing.T) {
	db := openTestDB(t)
	truncateAll(t, db)
	ctx := context.Background()
	repo := postgresql.NewSalaryRepository(db)
	accounts := postgresql.NewPaymentAccountRepository(db)
	empID := createTestEmployee(t, db, "Zain", 30000, "Active")

	account, err := accounts.Create(ctx, ledger.PaymentAccount{Name: "JazzCash", Type: ledger.AccountTypeOther, IsActive: true})
	require.NoError(t, err)

	created, err := repo.Create(ctx, newUnpaid(empID, "April", 2025, 30000))
	require.NoError(t, err)

	paid, err := repo.MarkPaid(ctx, created.ID, salary.PaymentDetails{
		PaymentAccountID: account.ID,
		PaidDate:         time.Now(),
		PaidBy:           "Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, salary.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentAccountName)
	assert.Equal(t, "JazzCash", *paid.PaymentAccountName)

	_, err = repo.MarkPaid(ctx, created.ID, salary.PaymentDetails{PaymentAccountID: account.ID, PaidDate: time.Now()})
	assert.ErrorIs(t, err, salary.ErrAlreadyPaid)

	paid.Allowances = decimal.NewFromInt(100)
	_, err = repo.UpdateUnpaid(ctx, paid)
	assert.ErrorIs(t, err, salary.ErrCannotModifyPaidRecord)

	assert.ErrorIs(t, repo.DeleteUnpaid(ctx, created.ID), salary.ErrCannotDeletePaidRecord)
	assert.ErrorIs(t, repo.DeleteUnpaid(ctx, "missing"), salary.ErrSalaryNotFound)
}

func TestSalaryRepository_ListOrder(t *testing.T) {
	db := openTestDB(t)
	truncateAll(t, db)
	ctx := context.Background()
	repo := postgresql.NewSalaryRepository(db)
	empID := createTestEmployee(t, db, "Ali", 30000, "Active")

	for _, p := range []struct {
		month string
		year  int
	}{{"January", 2025}, {"December", 2024}, {"March", 2025}} {
		_, err := repo.Create(ctx, newUnpaid(empID, p.month, p.year, 30000))
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, salary.Filter{EmployeeID: empID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "March", list[0].Month)
	assert.Equal(t, "January", list[1].Month)
	assert.Equal(t, "December", list[2].Month)

	list, err = repo.List(ctx, salary.Filter{Year: 2024})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
