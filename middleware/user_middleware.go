package middleware

import (
	"context"
	"net/http"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
	"github.com/andrewpaige1/workbook-api/utils"
)

type UserSyncer interface {
	Sync(ctx context.Context, identity auth.Identity) (*models.User, error)
}

// SyncUser ensures the token's user exists in the DB and attaches it to the
// request context for downstream handlers.
func SyncUser(users UserSyncer, log *logger.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, ok := utils.GetIdentity(r)
			if !ok {
				utils.WriteError(w, apperr.Unauthorized("no authenticated e-mail"))
				return
			}

			user, err := users.Sync(r.Context(), identity)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindPersistence {
					log.Error("failed to sync user", "path", r.URL.Path, "error", err)
				}
				utils.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithUser(r.Context(), user)))
		}
	}
}
