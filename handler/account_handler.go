package handler

import (
	"net/http"
	"secure-bank-api/common"
	"secure-bank-api/logger"
	"secure-bank-api/model"
	"secure-bank-api/service"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	registry AccountRegistry
}

func NewAccountHandler(registry AccountRegistry) *AccountHandler {
	return &AccountHandler{registry: registry}
}

// OpenAccount godoc
// @Summary      Open an account
// @Description  Admin only. Opens an account with a random 10-digit number for an existing user.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      model.OpenAccountRequest  true  "Account details"
// @Success      201      {object}  model.Account
// @Failure      400      {object}  common.AppError
// @Failure      503      {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/admin/accounts [post]
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.OpenAccountRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  req.UserID,
		"type":     req.Type,
		"currency": req.Currency,
	}).Info("Open account request received")

	account, err := h.registry.Open(r.Context(), req.UserID, req.Type, req.Currency)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusCreated, account)
	return nil
}

// ListAccounts godoc
// @Summary      List my accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {array}   model.Account
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	requester, appErr := requesterFrom(r)
	if appErr != nil {
		return appErr
	}

	accounts, err := h.registry.ListForUser(r.Context(), requester.UserID)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, accounts)
	return nil
}

// authorizeAccount lets owners and admins through.
func authorizeAccount(r *http.Request, registry AccountRegistry, accountNumber string) *common.AppError {
	requester, appErr := requesterFrom(r)
	if appErr != nil {
		return appErr
	}
	ref, err := registry.Ref(r.Context(), accountNumber)
	if err != nil {
		return mapServiceError(err)
	}
	if !requester.IsAdmin() && ref.UserID != requester.UserID {
		logger.Log.WithFields(logrus.Fields{
			"user_id":        requester.UserID,
			"account_number": accountNumber,
		}).Warn("Permission denied for account access")
		return mapServiceError(service.ErrPermissionDenied)
	}
	return nil
}
