package handler

import (
	"net/http"
	"secure-bank-api/common"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type WithdrawalHandler struct {
	withdrawals WithdrawalService
}

func NewWithdrawalHandler(withdrawals WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

func withdrawalID(r *http.Request) (uuid.UUID, *common.AppError) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, common.NewAppError(http.StatusBadRequest, "ValidationError", "Invalid withdrawal ID", err)
	}
	return id, nil
}

// Initiate godoc
// @Summary      Initiate a withdrawal
// @Description  Reserves the amount and opens a pending withdrawal with the full stage sequence.
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        request  body      model.InitiateWithdrawalRequest  true  "Withdrawal"
// @Success      201      {object}  model.Withdrawal
// @Failure      400      {object}  common.AppError
// @Failure      403      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/withdrawals [post]
func (h *WithdrawalHandler) Initiate(w http.ResponseWriter, r *http.Request) *common.AppError {
	requester, appErr := requesterFrom(r)
	if appErr != nil {
		return appErr
	}
	var req model.InitiateWithdrawalRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":        requester.UserID,
		"account_number": req.AccountNumber,
		"amount":         req.Amount.String(),
	}).Info("Withdrawal request received")

	withdrawal, err := h.withdrawals.Initiate(r.Context(), req, requester)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusCreated, withdrawal)
	return nil
}

// List godoc
// @Summary      List withdrawals
// @Description  Admin queue, oldest first. status is pending (default), completed, rejected or all.
// @Tags         withdrawals
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Param        limit   query     int     false  "Maximum number of withdrawals"
// @Success      200     {array}   model.WithdrawalSummary
// @Failure      400     {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/withdrawals [get]
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	query := r.URL.Query()
	status := model.WithdrawalPending
	switch raw := query.Get("status"); raw {
	case "":
	case "all":
		status = ""
	case string(model.WithdrawalPending), string(model.WithdrawalCompleted), string(model.WithdrawalRejected):
		status = model.WithdrawalStatus(raw)
	default:
		return common.NewAppError(http.StatusBadRequest, "ValidationError", "Unknown withdrawal status", nil)
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return common.NewAppError(http.StatusBadRequest, "ValidationError", "limit must be an integer", err)
		}
		limit = parsed
	}

	summaries, err := h.withdrawals.List(r.Context(), status, limit)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, summaries)
	return nil
}

// Get godoc
// @Summary      Get a withdrawal
// @Tags         withdrawals
// @Produce      json
// @Param        id   path      string  true  "Withdrawal ID"
// @Success      200  {object}  model.Withdrawal
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/withdrawals/{id} [get]
func (h *WithdrawalHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	requester, appErr := requesterFrom(r)
	if appErr != nil {
		return appErr
	}
	id, appErr := withdrawalID(r)
	if appErr != nil {
		return appErr
	}

	withdrawal, err := h.withdrawals.Get(r.Context(), id, requester)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, withdrawal)
	return nil
}

// ListForAccount godoc
// @Summary      Withdrawals of an account
// @Tags         accounts
// @Produce      json
// @Param        accountNumber  path      string  true  "Account number"
// @Success      200            {array}   model.Withdrawal
// @Failure      403            {object}  common.AppError
// @Failure      404            {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/accounts/{accountNumber}/withdrawals [get]
func (h *WithdrawalHandler) ListForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	requester, appErr := requesterFrom(r)
	if appErr != nil {
		return appErr
	}

	withdrawals, err := h.withdrawals.ListForAccount(r.Context(), r.PathValue("accountNumber"), requester)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, withdrawals)
	return nil
}

// VerifyStage godoc
// @Summary      Verify a stage
// @Description  Stages are verified strictly in order. Verifying the last stage debits the account.
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Withdrawal ID"
// @Param        n        path      int                       true  "Stage index"
// @Param        request  body      model.VerifyStageRequest  true  "Verifier"
// @Success      200      {object}  model.Withdrawal
// @Failure      402      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Failure      409      {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/withdrawals/{id}/stages/{n}/verify [post]
func (h *WithdrawalHandler) VerifyStage(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := withdrawalID(r)
	if appErr != nil {
		return appErr
	}
	index, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "ValidationError", "Stage index must be an integer", err)
	}
	var req model.VerifyStageRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	withdrawal, err := h.withdrawals.VerifyStage(r.Context(), id, index, req.VerifiedBy, req.Remarks)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, withdrawal)
	return nil
}

// Reject godoc
// @Summary      Reject a withdrawal
// @Description  Releases the reserved funds. Rejecting twice returns the rejected withdrawal.
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Withdrawal ID"
// @Param        request  body      model.RejectWithdrawalRequest  true  "Reason"
// @Success      200      {object}  model.Withdrawal
// @Failure      404      {object}  common.AppError
// @Failure      409      {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/withdrawals/{id}/reject [post]
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := withdrawalID(r)
	if appErr != nil {
		return appErr
	}
	var req model.RejectWithdrawalRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	withdrawal, err := h.withdrawals.Reject(r.Context(), id, req.RejectedBy, req.Reason)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, withdrawal)
	return nil
}
