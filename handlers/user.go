package handlers

import (
	"net/http"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/utils"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.CurrentUser(r.Context())
	if !ok {
		utils.WriteError(w, apperr.Unauthorized("no synced user"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", user)
}
