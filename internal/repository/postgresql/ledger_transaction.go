package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type transactionRepository struct {
	db *database.DB
}

func NewTransactionRepository(db *database.DB) ledger.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `
	id, date, amount, purpose, payment_account_id, external_transaction_id,
	description, related_salary_id, paid_by, created_by, created_at`

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var t ledger.Transaction
	err := row.Scan(
		&t.ID, &t.Date, &t.Amount, &t.Purpose, &t.PaymentAccountID, &t.ExternalTransactionID,
		&t.Description, &t.RelatedSalaryID, &t.PaidBy, &t.CreatedBy, &t.CreatedAt,
	)
	return t, err
}

// Create implements ledger.TransactionRepository.
func (r *transactionRepository) Create(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	query := `
		INSERT INTO transactions (
			id, date, amount, purpose, payment_account_id, external_transaction_id,
			description, related_salary_id, paid_by, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + transactionColumns

	created, err := scanTransaction(q.QueryRow(ctx, query,
		id.String(), tx.Date, tx.Amount, tx.Purpose, tx.PaymentAccountID, tx.ExternalTransactionID,
		tx.Description, tx.RelatedSalaryID, tx.PaidBy, tx.CreatedBy,
	))
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

// List implements ledger.TransactionRepository.
func (r *transactionRepository) List(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Purpose != "" {
		query += fmt.Sprintf(" AND purpose = $%d", argIdx)
		args = append(args, filter.Purpose)
		argIdx++
	}
	if filter.PaymentAccountID != "" {
		query += fmt.Sprintf(" AND payment_account_id = $%d", argIdx)
		args = append(args, filter.PaymentAccountID)
		argIdx++
	}
	if filter.RelatedSalaryID != "" {
		query += fmt.Sprintf(" AND related_salary_id = $%d", argIdx)
		args = append(args, filter.RelatedSalaryID)
		argIdx++
	}
	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}
