package ledger

import "context"

type PaymentAccountRepository interface {
	Create(ctx context.Context, account PaymentAccount) (PaymentAccount, error)
	GetByID(ctx context.Context, id string) (PaymentAccount, error)
	// GetByName matches the account name case-insensitively.
	GetByName(ctx context.Context, name string) (PaymentAccount, error)
	List(ctx context.Context, activeOnly bool) ([]PaymentAccount, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction) (Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
}
