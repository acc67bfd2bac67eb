package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
	"github.com/google/uuid"
)

type LedgerServiceImpl struct {
	transactor  repository.Transactor
	accountRepo ledger.PaymentAccountRepository
	txRepo      ledger.TransactionRepository
	logRepo     activitylog.ActivityLogRepository
}

func NewLedgerService(
	transactor repository.Transactor,
	accountRepo ledger.PaymentAccountRepository,
	txRepo ledger.TransactionRepository,
	logRepo activitylog.ActivityLogRepository,
) ledger.LedgerService {
	return &LedgerServiceImpl{
		transactor:  transactor,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		logRepo:     logRepo,
	}
}

// ListPaymentAccounts implements ledger.LedgerService.
func (s *LedgerServiceImpl) ListPaymentAccounts(ctx context.Context, activeOnly bool) ([]ledger.PaymentAccountResponse, error) {
	accounts, err := s.accountRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.PaymentAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ledger.ToPaymentAccountResponse(a))
	}
	return out, nil
}

// CreatePaymentAccount implements ledger.LedgerService.
func (s *LedgerServiceImpl) CreatePaymentAccount(ctx context.Context, actor activitylog.Actor, req ledger.CreatePaymentAccountRequest) (ledger.PaymentAccountResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.PaymentAccountResponse{}, err
	}

	var created ledger.PaymentAccount
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.accountRepo.Create(ctx, ledger.PaymentAccount{
			Name:          req.Name,
			Type:          ledger.AccountType(req.Type),
			BankName:      req.BankName,
			AccountNumber: req.AccountNumber,
			IBAN:          req.IBAN,
			Notes:         req.Notes,
			IsActive:      true,
			CreatedBy:     actor.UserIDPtr(),
		})
		if err != nil {
			return err
		}
		return s.logCreated(ctx, actor, created, fmt.Sprintf("Created payment account %s", created.Name))
	})
	if err != nil {
		return ledger.PaymentAccountResponse{}, err
	}

	return ledger.ToPaymentAccountResponse(created), nil
}

// ListTransactions implements ledger.LedgerService.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	txs, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, ledger.ToTransactionResponse(t))
	}
	return out, nil
}

// ResolvePaymentAccount implements ledger.LedgerService.
func (s *LedgerServiceImpl) ResolvePaymentAccount(ctx context.Context, actor activitylog.Actor, reference string) (ledger.PaymentAccount, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return ledger.PaymentAccount{}, validator.ValidationErrors{{Field: "payment_account_id", Message: "payment_account_id is required"}}
	}

	if _, err := uuid.Parse(ref); err == nil {
		account, err := s.accountRepo.GetByID(ctx, ref)
		if err != nil {
			return ledger.PaymentAccount{}, err
		}
		if !account.IsActive {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountInactive
		}
		return account, nil
	}

	account, err := s.accountRepo.GetByName(ctx, ref)
	if err == nil {
		if !account.IsActive {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountInactive
		}
		return account, nil
	}
	if !errors.Is(err, ledger.ErrPaymentAccountNotFound) {
		return ledger.PaymentAccount{}, err
	}

	bankName := ref
	account, err = s.accountRepo.Create(ctx, ledger.PaymentAccount{
		Name:      ref,
		Type:      ledger.AutoAccountType(ref),
		BankName:  &bankName,
		IsActive:  true,
		CreatedBy: actor.UserIDPtr(),
	})
	if err != nil {
		return ledger.PaymentAccount{}, err
	}
	if err := s.logCreated(ctx, actor, account, fmt.Sprintf("Auto-created payment account %s", account.Name)); err != nil {
		return ledger.PaymentAccount{}, err
	}

	slog.Info("Auto-created payment account", "payment_account_id", account.ID, "name", account.Name, "type", account.Type)
	return account, nil
}

func (s *LedgerServiceImpl) logCreated(ctx context.Context, actor activitylog.Actor, account ledger.PaymentAccount, description string) error {
	_, err := s.logRepo.Create(ctx, activitylog.Entry{
		Action:      activitylog.ActionCreate,
		TargetType:  activitylog.TargetPaymentAccount,
		TargetID:    &account.ID,
		Description: description,
		NewValue:    activitylog.Snapshot(ledger.ToPaymentAccountResponse(account)),
		PerformedBy: actor.PerformedBy("Admin"),
		UserID:      actor.UserIDPtr(),
	})
	if err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}
