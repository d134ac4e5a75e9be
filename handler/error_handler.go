package handler

import (
	"errors"
	"net/http"
	"secure-bank-api/common"
	"secure-bank-api/model"
	"secure-bank-api/service"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

type errorMapping struct {
	target error
	code   int
	kind   string
}

// Order matters: storage loss wins over any business error it travels with,
// and DebitFailed wins over the rule that caused it.
var errorMappings = []errorMapping{
	{service.ErrStorageUnavailable, http.StatusServiceUnavailable, "StorageUnavailable"},
	{service.ErrDebitFailed, http.StatusPaymentRequired, "DebitFailed"},
	{service.ErrAccountNotFound, http.StatusNotFound, "NotFound"},
	{service.ErrWithdrawalNotFound, http.StatusNotFound, "NotFound"},
	{service.ErrTransactionNotFound, http.StatusNotFound, "NotFound"},
	{model.ErrStageNotFound, http.StatusNotFound, "NotFound"},
	{model.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
	{model.ErrCurrencyMismatch, http.StatusBadRequest, "CurrencyMismatch"},
	{model.ErrInsufficientFunds, http.StatusBadRequest, "InsufficientFunds"},
	{service.ErrInvalidPeriod, http.StatusBadRequest, "ValidationError"},
	{model.ErrOutOfOrderStage, http.StatusConflict, "OutOfOrderStage"},
	{model.ErrAlreadyVerified, http.StatusConflict, "AlreadyVerifiedStage"},
	{model.ErrAlreadyFinalized, http.StatusConflict, "AlreadyFinalizedWithdrawal"},
	{model.ErrStagesIncomplete, http.StatusConflict, "AlreadyFinalizedWithdrawal"},
	{service.ErrAlreadyReversed, http.StatusConflict, "AlreadyReversed"},
	{service.ErrNotReversible, http.StatusConflict, "NotReversible"},
	{service.ErrPermissionDenied, http.StatusForbidden, "PermissionDenied"},
	{service.ErrAccountNumberExhausted, http.StatusServiceUnavailable, "StorageUnavailable"},
}

// mapServiceError turns a service error into the response body. Storage failures are
// always marked retryable; business errors never are.
func mapServiceError(err error) *common.AppError {
	retryable := errors.Is(err, service.ErrStorageUnavailable) || errors.Is(err, service.ErrAccountNumberExhausted)
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.target.Error()
		switch m.code {
		case http.StatusServiceUnavailable:
			message = "The service is temporarily unavailable, please retry"
		case http.StatusPaymentRequired:
			message = debitFailureMessage(err)
		}
		appErr := common.NewAppError(m.code, m.kind, message, err)
		appErr.Retryable = retryable
		return appErr
	}
	return common.NewAppError(http.StatusInternalServerError, "Internal", "Internal server error", err)
}

// debitCauses are the rules a final-stage debit can break.
var debitCauses = []error{
	model.ErrInsufficientFunds,
	model.ErrReservationMissing,
	model.ErrCurrencyMismatch,
	model.ErrInvalidAmount,
	model.ErrAlreadyFinalized,
}

func debitFailureMessage(err error) string {
	for _, cause := range debitCauses {
		if errors.Is(err, cause) {
			return service.ErrDebitFailed.Error() + ": " + cause.Error()
		}
	}
	return service.ErrDebitFailed.Error()
}
