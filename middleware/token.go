package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/config"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/utils"
)

// AuthCookie is read when no Authorization header is present.
const AuthCookie = "auth_token"

// EnsureValidToken returns middleware that rejects requests without a valid
// token. With an Auth0 domain configured tokens are RS256 and checked against
// the tenant's JWKS; otherwise they are HS256 signed with the shared secret.
func EnsureValidToken(cfg *config.Config, log *logger.Logger) (func(http.Handler) http.Handler, error) {
	v, err := newValidator(cfg)
	if err != nil {
		return nil, err
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Debug("rejected token", "path", r.URL.Path, "error", err)
		msg := "invalid or expired token"
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			msg = "authentication required"
		}
		utils.WriteError(w, apperr.Unauthorized(msg))
	}

	mw := jwtmiddleware.New(
		v.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			jwtmiddleware.CookieTokenExtractor(AuthCookie),
		)),
	)

	return func(next http.Handler) http.Handler {
		return mw.CheckJWT(next)
	}, nil
}

func newValidator(cfg *config.Config) (*validator.Validator, error) {
	customClaims := validator.WithCustomClaims(func() validator.CustomClaims {
		return &auth.Claims{}
	})
	skew := validator.WithAllowedClockSkew(time.Minute)
	audience := []string{cfg.Auth0Audience}

	if cfg.Auth0Domain != "" {
		issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
		}
		provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
		v, err := validator.New(provider.KeyFunc, validator.RS256, issuerURL.String(), audience, customClaims, skew)
		if err != nil {
			return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
		}
		return v, nil
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("either AUTH0_DOMAIN or JWT_SECRET_KEY must be set")
	}
	secret := []byte(cfg.JWTSecret)
	v, err := validator.New(
		func(context.Context) (interface{}, error) { return secret, nil },
		validator.HS256, cfg.TokenIssuer, audience, customClaims, skew,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}
	return v, nil
}
