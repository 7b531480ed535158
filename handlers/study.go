package handlers

import (
	"net/http"

	"github.com/andrewpaige1/workbook-api/services"
	"github.com/andrewpaige1/workbook-api/utils"
)

type sessionRequest struct {
	Results []services.StudyResult `json:"results"`
}

func (h *Handler) StartStudy(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	deck, err := h.svc.Study.StartStudy(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", deck)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req sessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.svc.Study.RunStudySession(r.Context(), identity, r.PathValue("id"), req.Results)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "session saved", session)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	sessions, err := h.svc.Study.ListSessions(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", sessions)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Study.GetSession(r.Context(), identity, r.PathValue("sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", view)
}

func (h *Handler) GetCardHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	history, err := h.svc.Study.GetCardHistory(r.Context(), identity, r.PathValue("cardID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", history)
}
