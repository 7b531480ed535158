package handlers

import (
	"net/http"

	"github.com/andrewpaige1/workbook-api/services"
	"github.com/andrewpaige1/workbook-api/utils"
)

type cardRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req cardRequest
	if !h.decode(w, r, &req) {
		return
	}
	card, err := h.svc.Cards.AddCard(r.Context(), identity, r.PathValue("id"), services.CardRequest{
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "card added", card)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req cardRequest
	if !h.decode(w, r, &req) {
		return
	}
	card, err := h.svc.Cards.EditCard(r.Context(), identity, r.PathValue("id"), r.PathValue("cardID"), services.CardRequest{
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "card updated", card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.svc.Cards.DeleteCard(r.Context(), identity, r.PathValue("id"), r.PathValue("cardID")); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "card deleted", nil)
}
