package handler

import (
	"net/http"
	"secure-bank-api/common"
)

type StageHandler struct {
	catalog StageCatalog
}

func NewStageHandler(catalog StageCatalog) *StageHandler {
	return &StageHandler{catalog: catalog}
}

// ListStages godoc
// @Summary      Approval stages
// @Description  The ordered stages every new withdrawal goes through.
// @Tags         withdrawals
// @Produce      json
// @Success      200  {array}  model.StageTemplate
// @Security     BearerAuth
// @Router       /api/stages [get]
func (h *StageHandler) ListStages(w http.ResponseWriter, r *http.Request) *common.AppError {
	common.WriteJSON(w, http.StatusOK, h.catalog.Templates())
	return nil
}
