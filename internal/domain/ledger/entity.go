package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBank      AccountType = "Bank"
	AccountTypeJazzCash  AccountType = "JazzCash"
	AccountTypeEasypaisa AccountType = "Easypaisa"
	AccountTypeOther     AccountType = "Other"
)

type PaymentAccount struct {
	ID            string
	Name          string
	Type          AccountType
	BankName      *string
	AccountNumber *string
	IBAN          *string
	Notes         *string
	IsActive      bool
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Purpose string

const (
	PurposeExpense Purpose = "Expense"
	PurposeSalary  Purpose = "Salary"
	PurposeOther   Purpose = "Other"
)

type Transaction struct {
	ID                    string
	Date                  time.Time
	Amount                decimal.Decimal
	Purpose               Purpose
	PaymentAccountID      string
	ExternalTransactionID *string
	Description           string
	RelatedSalaryID       *string
	PaidBy                *string
	CreatedBy             *string
	CreatedAt             time.Time
}

// Mobile wallets auto-registered at payment time are filed as Other.
var walletNames = []string{"JazzCash", "Easypaisa", "SadaPay"}

// AutoAccountType picks the type of an account created from a bare name.
func AutoAccountType(name string) AccountType {
	for _, w := range walletNames {
		if strings.EqualFold(name, w) {
			return AccountTypeOther
		}
	}
	return AccountTypeBank
}
