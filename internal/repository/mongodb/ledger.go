package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type paymentAccountDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Type          string    `bson:"type"`
	BankName      *string   `bson:"bank_name,omitempty"`
	AccountNumber *string   `bson:"account_number,omitempty"`
	IBAN          *string   `bson:"iban,omitempty"`
	Notes         *string   `bson:"notes,omitempty"`
	IsActive      bool      `bson:"is_active"`
	CreatedBy     *string   `bson:"created_by,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d paymentAccountDoc) toEntity() ledger.PaymentAccount {
	return ledger.PaymentAccount{
		ID:            d.ID,
		Name:          d.Name,
		Type:          ledger.AccountType(d.Type),
		BankName:      d.BankName,
		AccountNumber: d.AccountNumber,
		IBAN:          d.IBAN,
		Notes:         d.Notes,
		IsActive:      d.IsActive,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type paymentAccountRepository struct {
	coll *mongo.Collection
}

func NewPaymentAccountRepository(db *database.MongoDB) ledger.PaymentAccountRepository {
	return &paymentAccountRepository{coll: db.Database.Collection(collPaymentAccounts)}
}

func (r *paymentAccountRepository) Create(ctx context.Context, account ledger.PaymentAccount) (ledger.PaymentAccount, error) {
	id, err := newID()
	if err != nil {
		return ledger.PaymentAccount{}, err
	}
	now := time.Now().UTC()

	doc := paymentAccountDoc{
		ID:            id,
		Name:          account.Name,
		Type:          string(account.Type),
		BankName:      account.BankName,
		AccountNumber: account.AccountNumber,
		IBAN:          account.IBAN,
		Notes:         account.Notes,
		IsActive:      account.IsActive,
		CreatedBy:     account.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNameExists
		}
		return ledger.PaymentAccount{}, fmt.Errorf("failed to create payment account: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *paymentAccountRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (ledger.PaymentAccount, error) {
	var doc paymentAccountDoc
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNotFound
		}
		return ledger.PaymentAccount{}, fmt.Errorf("failed to get payment account: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *paymentAccountRepository) GetByID(ctx context.Context, id string) (ledger.PaymentAccount, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *paymentAccountRepository) GetByName(ctx context.Context, name string) (ledger.PaymentAccount, error) {
	return r.findOne(ctx, bson.M{"name": name}, options.FindOne().SetCollation(caseInsensitive))
}

func (r *paymentAccountRepository) List(ctx context.Context, activeOnly bool) ([]ledger.PaymentAccount, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list payment accounts: %w", err)
	}
	docs, err := decodeAll[paymentAccountDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment accounts: %w", err)
	}

	out := make([]ledger.PaymentAccount, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

type transactionDoc struct {
	ID                    string               `bson:"_id"`
	Date                  time.Time            `bson:"date"`
	Amount                primitive.Decimal128 `bson:"amount"`
	Purpose               string               `bson:"purpose"`
	PaymentAccountID      string               `bson:"payment_account_id"`
	ExternalTransactionID *string              `bson:"external_transaction_id,omitempty"`
	Description           string               `bson:"description"`
	RelatedSalaryID       *string              `bson:"related_salary_id,omitempty"`
	PaidBy                *string              `bson:"paid_by,omitempty"`
	CreatedBy             *string              `bson:"created_by,omitempty"`
	CreatedAt             time.Time            `bson:"created_at"`
}

func (d transactionDoc) toEntity() ledger.Transaction {
	return ledger.Transaction{
		ID:                    d.ID,
		Date:                  d.Date,
		Amount:                fromDecimal128(d.Amount),
		Purpose:               ledger.Purpose(d.Purpose),
		PaymentAccountID:      d.PaymentAccountID,
		ExternalTransactionID: d.ExternalTransactionID,
		Description:           d.Description,
		RelatedSalaryID:       d.RelatedSalaryID,
		PaidBy:                d.PaidBy,
		CreatedBy:             d.CreatedBy,
		CreatedAt:             d.CreatedAt,
	}
}

type transactionRepository struct {
	coll *mongo.Collection
}

func NewTransactionRepository(db *database.MongoDB) ledger.TransactionRepository {
	return &transactionRepository{coll: db.Database.Collection(collTransactions)}
}

func (r *transactionRepository) Create(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	id, err := newID()
	if err != nil {
		return ledger.Transaction{}, err
	}

	doc := transactionDoc{
		ID:                    id,
		Date:                  tx.Date.UTC(),
		Amount:                toDecimal128(tx.Amount),
		Purpose:               string(tx.Purpose),
		PaymentAccountID:      tx.PaymentAccountID,
		ExternalTransactionID: tx.ExternalTransactionID,
		Description:           tx.Description,
		RelatedSalaryID:       tx.RelatedSalaryID,
		PaidBy:                tx.PaidBy,
		CreatedBy:             tx.CreatedBy,
		CreatedAt:             time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *transactionRepository) List(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	match := bson.M{}
	if filter.Purpose != "" {
		match["purpose"] = filter.Purpose
	}
	if filter.PaymentAccountID != "" {
		match["payment_account_id"] = filter.PaymentAccountID
	}
	if filter.RelatedSalaryID != "" {
		match["related_salary_id"] = filter.RelatedSalaryID
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, match, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	docs, err := decodeAll[transactionDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	out := make([]ledger.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}
