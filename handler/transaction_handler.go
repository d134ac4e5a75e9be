package handler

import (
	"context"
	"net/http"
	"secure-bank-api/common"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultStatementPeriod = 30 * 24 * time.Hour

type TransactionHandler struct {
	ledger   LedgerService
	registry AccountRegistry
}

func NewTransactionHandler(ledger LedgerService, registry AccountRegistry) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, registry: registry}
}

// Credit godoc
// @Summary      Credit an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        accountNumber  path      string                    true  "Account number"
// @Param        request        body      model.LedgerEntryRequest  true  "Entry"
// @Success      201            {object}  model.Transaction
// @Failure      400            {object}  common.AppError
// @Failure      404            {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/admin/accounts/{accountNumber}/credit [post]
func (h *TransactionHandler) Credit(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.entry(w, r, h.ledger.Credit)
}

// Debit godoc
// @Summary      Debit an account
// @Description  Only the available balance (balance minus reservations) can be debited.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        accountNumber  path      string                    true  "Account number"
// @Param        request        body      model.LedgerEntryRequest  true  "Entry"
// @Success      201            {object}  model.Transaction
// @Failure      400            {object}  common.AppError
// @Failure      404            {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/admin/accounts/{accountNumber}/debit [post]
func (h *TransactionHandler) Debit(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.entry(w, r, h.ledger.Debit)
}

type ledgerEntry func(ctx context.Context, accountNumber string, amount decimal.Decimal, currency, description string) (*model.Transaction, error)

func (h *TransactionHandler) entry(w http.ResponseWriter, r *http.Request, apply ledgerEntry) *common.AppError {
	accountNumber := r.PathValue("accountNumber")
	var req model.LedgerEntryRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"account_number": accountNumber,
		"amount":         req.Amount.String(),
		"path":           r.URL.Path,
	}).Info("Ledger entry request received")

	transaction, err := apply(r.Context(), accountNumber, req.Amount, req.Currency, req.Description)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusCreated, transaction)
	return nil
}

// RecentTransactions godoc
// @Summary      Recent transactions
// @Description  Newest first. limit defaults to 10 and is capped at 100.
// @Tags         accounts
// @Produce      json
// @Param        accountNumber  path      string  true   "Account number"
// @Param        limit          query     int     false  "Maximum number of transactions"
// @Success      200            {array}   model.Transaction
// @Failure      403            {object}  common.AppError
// @Failure      404            {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/accounts/{accountNumber}/transactions [get]
func (h *TransactionHandler) RecentTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountNumber := r.PathValue("accountNumber")
	if appErr := authorizeAccount(r, h.registry, accountNumber); appErr != nil {
		return appErr
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return common.NewAppError(http.StatusBadRequest, "ValidationError", "limit must be an integer", err)
		}
		limit = parsed
	}

	transactions, err := h.ledger.RecentTransactions(r.Context(), accountNumber, limit)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, transactions)
	return nil
}

// Statement godoc
// @Summary      Account statement
// @Description  Transactions in [from, to) with the current balance. Defaults to the last 30 days.
// @Tags         accounts
// @Produce      json
// @Param        accountNumber  path      string  true   "Account number"
// @Param        from           query     string  false  "RFC3339 start"
// @Param        to             query     string  false  "RFC3339 end"
// @Success      200            {object}  model.Statement
// @Failure      400            {object}  common.AppError
// @Failure      404            {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/accounts/{accountNumber}/statement [get]
func (h *TransactionHandler) Statement(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountNumber := r.PathValue("accountNumber")
	if appErr := authorizeAccount(r, h.registry, accountNumber); appErr != nil {
		return appErr
	}

	to := time.Now().UTC()
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return common.NewAppError(http.StatusBadRequest, "ValidationError", "to must be an RFC3339 timestamp", err)
		}
		to = parsed
	}
	from := to.Add(-defaultStatementPeriod)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return common.NewAppError(http.StatusBadRequest, "ValidationError", "from must be an RFC3339 timestamp", err)
		}
		from = parsed
	}

	statement, err := h.ledger.Statement(r.Context(), accountNumber, from, to)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, statement)
	return nil
}

// Reconcile godoc
// @Summary      Check the ledger invariant
// @Tags         admin
// @Produce      json
// @Param        accountNumber  path      string  true  "Account number"
// @Success      200            {object}  model.Reconciliation
// @Failure      404            {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/admin/accounts/{accountNumber}/reconcile [get]
func (h *TransactionHandler) Reconcile(w http.ResponseWriter, r *http.Request) *common.AppError {
	result, err := h.ledger.Reconcile(r.Context(), r.PathValue("accountNumber"))
	if err != nil {
		return mapServiceError(err)
	}
	common.WriteJSON(w, http.StatusOK, result)
	return nil
}

// ReverseTransaction godoc
// @Summary      Reverse a transaction
// @Description  Appends a compensating transaction. History is never edited.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Transaction ID"
// @Param        request  body      model.ReverseTransactionRequest  true  "Reason"
// @Success      201      {object}  model.Transaction
// @Failure      404      {object}  common.AppError
// @Failure      409      {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/admin/transactions/{id}/reverse [post]
func (h *TransactionHandler) ReverseTransaction(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "ValidationError", "Invalid transaction ID", err)
	}
	var req model.ReverseTransactionRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	reversal, err := h.ledger.ReverseTransaction(r.Context(), id, req.ReversedBy, req.Reason)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusCreated, reversal)
	return nil
}
