package ledger

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePaymentAccountRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Type          string  `json:"type" validate:"required,oneof=Bank JazzCash Easypaisa Other"`
	BankName      *string `json:"bank_name,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
	IBAN          *string `json:"iban,omitempty" validate:"omitempty,max=34"`
	Notes         *string `json:"notes,omitempty"`
}

func (r *CreatePaymentAccountRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validator.Struct(r)
}

type PaymentAccountResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	BankName      *string   `json:"bank_name,omitempty"`
	AccountNumber *string   `json:"account_number,omitempty"`
	IBAN          *string   `json:"iban,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToPaymentAccountResponse(a PaymentAccount) PaymentAccountResponse {
	return PaymentAccountResponse{
		ID:            a.ID,
		Name:          a.Name,
		Type:          string(a.Type),
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		IBAN:          a.IBAN,
		Notes:         a.Notes,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}

const DefaultTransactionLimit = 100

type TransactionFilter struct {
	Purpose          string `json:"purpose" validate:"omitempty,oneof=Expense Salary Other"`
	PaymentAccountID string `json:"payment_account_id"`
	RelatedSalaryID  string `json:"related_salary_id"`
	Limit            int    `json:"limit" validate:"gte=0,max=1000"`
}

func (f *TransactionFilter) Validate() error {
	if err := validator.Struct(f); err != nil {
		return err
	}
	if f.Limit == 0 {
		f.Limit = DefaultTransactionLimit
	}
	return nil
}

type TransactionResponse struct {
	ID                    string          `json:"id"`
	Date                  time.Time       `json:"date"`
	Amount                decimal.Decimal `json:"amount"`
	Purpose               string          `json:"purpose"`
	PaymentAccountID      string          `json:"payment_account_id"`
	ExternalTransactionID *string         `json:"transaction_id,omitempty"`
	Description           string          `json:"description"`
	RelatedSalaryID       *string         `json:"related_salary_id,omitempty"`
	PaidBy                *string         `json:"paid_by,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

func ToTransactionResponse(t Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                    t.ID,
		Date:                  t.Date,
		Amount:                t.Amount,
		Purpose:               string(t.Purpose),
		PaymentAccountID:      t.PaymentAccountID,
		ExternalTransactionID: t.ExternalTransactionID,
		Description:           t.Description,
		RelatedSalaryID:       t.RelatedSalaryID,
		PaidBy:                t.PaidBy,
		CreatedAt:             t.CreatedAt,
	}
}
