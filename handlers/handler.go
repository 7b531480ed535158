package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/middleware"
	"github.com/andrewpaige1/workbook-api/models"
	"github.com/andrewpaige1/workbook-api/services"
	"github.com/andrewpaige1/workbook-api/utils"
)

type Handler struct {
	svc *services.Services
	log *logger.Logger
}

func New(svc *services.Services, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log.With("component", "handlers")}
}

// NewRouter registers every route. Token validation wraps the returned mux;
// each route syncs the caller's user before running.
func NewRouter(svc *services.Services, log *logger.Logger) *http.ServeMux {
	h := New(svc, log)
	sync := middleware.SyncUser(svc.Users, log)
	mux := http.NewServeMux()

	// User
	mux.HandleFunc("GET /api/me", sync(h.GetMe))

	// Workspace tree
	mux.HandleFunc("GET /api/items", sync(h.ListItems))
	mux.HandleFunc("POST /api/items", sync(h.CreateItem))
	mux.HandleFunc("PUT /api/items/{type}/{id}", sync(h.UpdateItem))
	mux.HandleFunc("PUT /api/items/{type}/{id}/move", sync(h.MoveItem))
	mux.HandleFunc("DELETE /api/items/{type}/{id}", sync(h.DeleteItem))
	mux.HandleFunc("GET /api/directories/choices", sync(h.DirectoryChoices))
	mux.HandleFunc("GET /api/directories/{id}", sync(h.GetDirectory))
	mux.HandleFunc("GET /api/workbooks/{id}", sync(h.GetWorkbook))

	// Cards
	mux.HandleFunc("POST /api/workbooks/{id}/cards", sync(h.CreateCard))
	mux.HandleFunc("PUT /api/workbooks/{id}/cards/{cardID}", sync(h.UpdateCard))
	mux.HandleFunc("DELETE /api/workbooks/{id}/cards/{cardID}", sync(h.DeleteCard))

	// Study
	mux.HandleFunc("GET /api/workbooks/{id}/study", sync(h.StartStudy))
	mux.HandleFunc("POST /api/workbooks/{id}/sessions", sync(h.CreateSession))
	mux.HandleFunc("GET /api/workbooks/{id}/sessions", sync(h.ListSessions))
	mux.HandleFunc("GET /api/sessions/{sessionID}", sync(h.GetSession))
	mux.HandleFunc("GET /api/cards/{cardID}/history", sync(h.GetCardHistory))

	// Sharing
	mux.HandleFunc("POST /api/workbooks/{id}/share", sync(h.ShareWorkbook))

	return mux
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		utils.WriteError(w, apperr.Unauthorized("no authenticated e-mail"))
		return auth.Identity{}, false
	}
	return identity, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		utils.WriteError(w, apperr.Validation("could not decode request"))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err) == apperr.KindPersistence {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	utils.WriteError(w, err)
}

func itemType(w http.ResponseWriter, r *http.Request) (models.ItemType, bool) {
	t, ok := models.ParseItemType(r.PathValue("type"))
	if !ok {
		utils.WriteError(w, apperr.Validation("type must be directory or workbook"))
	}
	return t, ok
}

func parentQuery(r *http.Request) *string {
	p := strings.TrimSpace(r.URL.Query().Get("parentId"))
	if p == "" {
		return nil
	}
	return &p
}
