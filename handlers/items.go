package handlers

import (
	"net/http"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/models"
	"github.com/andrewpaige1/workbook-api/services"
	"github.com/andrewpaige1/workbook-api/utils"
)

type itemRequest struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
}

type updateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type moveRequest struct {
	ParentID *string `json:"parentId"`
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	items, err := h.svc.Workspace.ListChildren(r.Context(), identity, parentQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", items)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, ok := models.ParseItemType(req.Type)
	if !ok {
		utils.WriteError(w, apperr.Validation("type must be directory or workbook"))
		return
	}

	item, err := h.svc.Workspace.Create(r.Context(), identity, services.CreateItemRequest{
		Type:        t,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "created", item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	t, ok := itemType(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.svc.Workspace.Update(r.Context(), identity, t, r.PathValue("id"), services.UpdateItemRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "updated", item)
}

func (h *Handler) MoveItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	t, ok := itemType(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.svc.Workspace.Move(r.Context(), identity, t, r.PathValue("id"), req.ParentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "moved", item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	t, ok := itemType(w, r)
	if !ok {
		return
	}
	if err := h.svc.Workspace.Delete(r.Context(), identity, t, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "deleted", nil)
}

func (h *Handler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Workspace.GetDirectory(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", view)
}

func (h *Handler) DirectoryChoices(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	dirs, err := h.svc.Workspace.DirectoryChoices(r.Context(), identity, parentQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", dirs)
}

func (h *Handler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Workspace.GetWorkbook(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", view)
}
