package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentAccountRepository_NameIsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	truncateAll(t, db)
	ctx := context.Background()
	repo := postgresql.NewPaymentAccountRepository(db)

	created, err := repo.Create(ctx, ledger.PaymentAccount{Name: "Meezan Bank", Type: ledger.AccountTypeBank, IsActive: true})
	require.NoError(t, err)

	got, err := repo.GetByName(ctx, "meezan bank")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.Create(ctx, ledger.PaymentAccount{Name: "MEEZAN BANK", Type: ledger.AccountTypeBank, IsActive: true})
	assert.ErrorIs(t, err, ledger.ErrPaymentAccountNameExists)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrPaymentAccountNotFound)
}

func TestTransactor_RollsBackEveryWrite(t *testing.T) {
	db := openTestDB(t)
	truncateAll(t, db)
	ctx := context.Background()
	tx := postgresql.NewTransactor(db)
	accounts := postgresql.NewPaymentAccountRepository(db)
	transactions := postgresql.NewTransactionRepository(db)
	logs := postgresql.NewActivityLogRepository(db)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		account, err := accounts.Create(ctx, ledger.PaymentAccount{Name: "HBL", Type: ledger.AccountTypeBank, IsActive: true})
		if err != nil {
			return err
		}
		if _, err := transactions.Create(ctx, ledger.Transaction{
			Date: time.Now(), Amount: decimal.NewFromInt(10), Purpose: ledger.PurposeOther, PaymentAccountID: account.ID,
		}); err != nil {
			return err
		}
		if _, err := logs.Create(ctx, activitylog.Entry{
			Action: activitylog.ActionSystem, TargetType: activitylog.TargetPaymentAccount,
			Description: "test", PerformedBy: "System",
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := accounts.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	entries, err := logs.List(ctx, activitylog.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestActivityLogRepository_StoresSnapshots(t *testing.T) {
	db := openTestDB(t)
	truncateAll(t, db)
	ctx := context.Background()
	logs := postgresql.NewActivityLogRepository(db)

	target := "salary-1"
	_, err := logs.Create(ctx, activitylog.Entry{
		Action:        activitylog.ActionUpdate,
		TargetType:    activitylog.TargetSalary,
		TargetID:      &target,
		Description:   "Updated salary",
		PreviousValue: activitylog.Snapshot(map[string]int{"allowances": 0}),
		NewValue:      activitylog.Snapshot(map[string]int{"allowances": 500}),
		PerformedBy:   "Admin",
	})
	require.NoError(t, err)

	entries, err := logs.List(ctx, activitylog.Filter{TargetType: "Salary", TargetID: target, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `{"allowances":500}`, string(entries[0].NewValue))
}
