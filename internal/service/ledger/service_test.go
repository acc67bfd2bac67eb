package ledger

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memAccounts struct {
	accounts []ledger.PaymentAccount
}

func (m *memAccounts) Create(_ context.Context, a ledger.PaymentAccount) (ledger.PaymentAccount, error) {
	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Name, a.Name) {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNameExists
		}
	}
	a.ID = uuid.NewString()
	m.accounts = append(m.accounts, a)
	return a, nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (ledger.PaymentAccount, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNotFound
}

func (m *memAccounts) GetByName(_ context.Context, name string) (ledger.PaymentAccount, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNotFound
}

func (m *memAccounts) List(_ context.Context, activeOnly bool) ([]ledger.PaymentAccount, error) {
	var out []ledger.PaymentAccount
	for _, a := range m.accounts {
		if !activeOnly || a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

type memTransactions struct {
	lastFilter ledger.TransactionFilter
}

func (m *memTransactions) Create(_ context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	return t, nil
}

func (m *memTransactions) List(_ context.Context, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	m.lastFilter = f
	return nil, nil
}

type memLogs struct {
	entries []activitylog.Entry
}

func (m *memLogs) Create(_ context.Context, e activitylog.Entry) (activitylog.Entry, error) {
	e.ID = fmt.Sprintf("log-%d", len(m.entries)+1)
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memLogs) List(context.Context, activitylog.Filter) ([]activitylog.Entry, error) {
	return m.entries, nil
}

func newTestService() (ledger.LedgerService, *memAccounts, *memTransactions, *memLogs) {
	accounts, txs, logs := &memAccounts{}, &memTransactions{}, &memLogs{}
	return NewLedgerService(passthroughTransactor{}, accounts, txs, logs), accounts, txs, logs
}

func TestCreatePaymentAccount(t *testing.T) {
	svc, accounts, _, logs := newTestService()
	ctx := context.Background()
	actor := activitylog.Actor{UserID: "admin-1", Name: "Admin"}

	got, err := svc.CreatePaymentAccount(ctx, actor, ledger.CreatePaymentAccountRequest{Name: "  HBL Payroll ", Type: "Bank"})
	require.NoError(t, err)
	assert.Equal(t, "HBL Payroll", got.Name)
	assert.True(t, got.IsActive)
	require.Len(t, accounts.accounts, 1)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, activitylog.TargetPaymentAccount, logs.entries[0].TargetType)

	_, err = svc.CreatePaymentAccount(ctx, actor, ledger.CreatePaymentAccountRequest{Name: "hbl payroll", Type: "Bank"})
	assert.ErrorIs(t, err, ledger.ErrPaymentAccountNameExists)

	_, err = svc.CreatePaymentAccount(ctx, actor, ledger.CreatePaymentAccountRequest{Name: "Vault", Type: "Crypto"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "type")
}

func TestResolvePaymentAccount(t *testing.T) {
	svc, accounts, _, logs := newTestService()
	ctx := context.Background()

	wallet, err := svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, "Easypaisa")
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountTypeOther, wallet.Type)
	assert.Equal(t, "Easypaisa", *wallet.BankName)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "Admin", logs.entries[0].PerformedBy)

	again, err := svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, " easypaisa ")
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)

	byID, err := svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, byID.ID)

	bank, err := svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, "Meezan Bank")
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountTypeBank, bank.Type)
	assert.Len(t, accounts.accounts, 2)

	_, err = svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, uuid.NewString())
	assert.ErrorIs(t, err, ledger.ErrPaymentAccountNotFound)

	_, err = svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, "   ")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestResolvePaymentAccount_Inactive(t *testing.T) {
	svc, accounts, _, _ := newTestService()
	ctx := context.Background()

	closed, err := accounts.Create(ctx, ledger.PaymentAccount{Name: "Closed", Type: ledger.AccountTypeBank, IsActive: false})
	require.NoError(t, err)

	_, err = svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, closed.ID)
	assert.ErrorIs(t, err, ledger.ErrPaymentAccountInactive)
	_, err = svc.ResolvePaymentAccount(ctx, activitylog.Actor{}, "closed")
	assert.ErrorIs(t, err, ledger.ErrPaymentAccountInactive)

	active, err := svc.ListPaymentAccounts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.ListPaymentAccounts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListTransactions_DefaultLimit(t *testing.T) {
	svc, _, txs, _ := newTestService()

	out, err := svc.ListTransactions(context.Background(), ledger.TransactionFilter{Purpose: "Salary"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, ledger.DefaultTransactionLimit, txs.lastFilter.Limit)

	_, err = svc.ListTransactions(context.Background(), ledger.TransactionFilter{Purpose: "Gift"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
