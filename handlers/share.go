package handlers

import (
	"net/http"

	"github.com/andrewpaige1/workbook-api/utils"
)

type shareRequest struct {
	ReceiverEmail string `json:"receiverEmail"`
}

func (h *Handler) ShareWorkbook(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req shareRequest
	if !h.decode(w, r, &req) {
		return
	}
	copied, err := h.svc.Sharing.Share(r.Context(), identity, r.PathValue("id"), req.ReceiverEmail)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "workbook shared", copied)
}
