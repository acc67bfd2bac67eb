package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
)

type LedgerHandler interface {
	ListPaymentAccounts(w http.ResponseWriter, r *http.Request)
	CreatePaymentAccount(w http.ResponseWriter, r *http.Request)
	ListTransactions(w http.ResponseWriter, r *http.Request)
}

type ledgerHandlerImpl struct {
	ledgerService ledger.LedgerService
}

func NewLedgerHandler(ledgerService ledger.LedgerService) LedgerHandler {
	return &ledgerHandlerImpl{
		ledgerService: ledgerService,
	}
}

func (h *ledgerHandlerImpl) ListPaymentAccounts(w http.ResponseWriter, r *http.Request) {
	activeOnly := queryParam(r, "active_only", "activeOnly") == "true"

	result, err := h.ledgerService.ListPaymentAccounts(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) CreatePaymentAccount(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req ledger.CreatePaymentAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ledgerService.CreatePaymentAccount(r.Context(), actorFrom(claims), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment account created", result)
}

func (h *ledgerHandlerImpl) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := ledger.TransactionFilter{
		Purpose:          queryParam(r, "purpose"),
		PaymentAccountID: queryParam(r, "paymentAccountId", "payment_account_id"),
		RelatedSalaryID:  queryParam(r, "relatedSalaryId", "related_salary_id"),
		Limit:            limit,
	}

	result, err := h.ledgerService.ListTransactions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result, limit)
}
