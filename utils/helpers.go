package utils

import (
	"context"
	"encoding/json"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/models"
)

type contextKey string

const userKey contextKey = "user"

// GetIdentity reads the caller's identity from the validated token claims.
func GetIdentity(r *http.Request) (auth.Identity, bool) {
	claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok || claims == nil {
		return auth.Identity{}, false
	}
	custom, ok := claims.CustomClaims.(*auth.Claims)
	if !ok || custom == nil {
		return auth.Identity{}, false
	}
	identity := custom.Identity()
	return identity, identity.Email != ""
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the user SyncUser attached to the request.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// Result is the body of every API response.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are gone by now; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, Result{Success: true, Message: message, Data: data})
}

// WriteError maps err to its status code and a message safe to show.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.StatusCode(apperr.KindOf(err)), Result{Success: false, Message: apperr.Message(err)})
}
