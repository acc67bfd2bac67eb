package ledger

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
)

type LedgerService interface {
	ListPaymentAccounts(ctx context.Context, activeOnly bool) ([]PaymentAccountResponse, error)
	CreatePaymentAccount(ctx context.Context, actor activitylog.Actor, req CreatePaymentAccountRequest) (PaymentAccountResponse, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]TransactionResponse, error)

	// ResolvePaymentAccount turns a payment-account reference into an account.
	// A UUID must name an existing account; any other string is looked up by
	// name and registered on first use.
	ResolvePaymentAccount(ctx context.Context, actor activitylog.Actor, reference string) (PaymentAccount, error)
}
