package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type paymentAccountRepository struct {
	db *database.DB
}

func NewPaymentAccountRepository(db *database.DB) ledger.PaymentAccountRepository {
	return &paymentAccountRepository{db: db}
}

const paymentAccountColumns = `
	id, name, type, bank_name, account_number, iban, notes, is_active,
	created_by, created_at, updated_at`

func scanPaymentAccount(row pgx.Row) (ledger.PaymentAccount, error) {
	var a ledger.PaymentAccount
	err := row.Scan(
		&a.ID, &a.Name, &a.Type, &a.BankName, &a.AccountNumber, &a.IBAN, &a.Notes, &a.IsActive,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Create implements ledger.PaymentAccountRepository.
func (r *paymentAccountRepository) Create(ctx context.Context, account ledger.PaymentAccount) (ledger.PaymentAccount, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return ledger.PaymentAccount{}, fmt.Errorf("failed to generate payment account id: %w", err)
	}

	query := `
		INSERT INTO payment_accounts (
			id, name, type, bank_name, account_number, iban, notes, is_active, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + paymentAccountColumns

	created, err := scanPaymentAccount(q.QueryRow(ctx, query,
		id.String(), account.Name, account.Type, account.BankName, account.AccountNumber,
		account.IBAN, account.Notes, account.IsActive, account.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNameExists
		}
		return ledger.PaymentAccount{}, fmt.Errorf("failed to create payment account: %w", err)
	}
	return created, nil
}

// GetByID implements ledger.PaymentAccountRepository.
func (r *paymentAccountRepository) GetByID(ctx context.Context, id string) (ledger.PaymentAccount, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + paymentAccountColumns + ` FROM payment_accounts WHERE id = $1`

	a, err := scanPaymentAccount(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNotFound
		}
		return ledger.PaymentAccount{}, fmt.Errorf("failed to get payment account: %w", err)
	}
	return a, nil
}

// GetByName implements ledger.PaymentAccountRepository.
func (r *paymentAccountRepository) GetByName(ctx context.Context, name string) (ledger.PaymentAccount, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + paymentAccountColumns + ` FROM payment_accounts WHERE LOWER(name) = LOWER($1)`

	a, err := scanPaymentAccount(q.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNotFound
		}
		return ledger.PaymentAccount{}, fmt.Errorf("failed to get payment account by name: %w", err)
	}
	return a, nil
}

// List implements ledger.PaymentAccountRepository.
func (r *paymentAccountRepository) List(ctx context.Context, activeOnly bool) ([]ledger.PaymentAccount, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + paymentAccountColumns + ` FROM payment_accounts`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.PaymentAccount
	for rows.Next() {
		a, err := scanPaymentAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment accounts: %w", err)
	}
	return accounts, nil
}
