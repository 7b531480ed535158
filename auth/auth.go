package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the one fact the identity provider hands us per request.
type Identity struct {
	Email string
	Name  string
}

// Claims are the custom claims read from a validated token.
type Claims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
}

// Validate rejects tokens without a usable e-mail.
func (c *Claims) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("token has no email claim")
	}
	if c.EmailVerified != nil && !*c.EmailVerified {
		return fmt.Errorf("email %q is not verified", c.Email)
	}
	return nil
}

func (c *Claims) Identity() Identity {
	return Identity{Email: strings.TrimSpace(c.Email), Name: strings.TrimSpace(c.Name)}
}

type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// CreateToken signs an HS256 token for identity. Used for local development
// and tests when no external provider is configured.
func CreateToken(identity Identity, cfg TokenConfig) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("auth: JWT secret key not set")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"sub":   identity.Email,
			"email": identity.Email,
			"name":  identity.Name,
			"iss":   cfg.Issuer,
			"aud":   []string{cfg.Audience},
			"iat":   now.Unix(),
			"exp":   now.Add(ttl).Unix(),
		})

	return token.SignedString([]byte(cfg.Secret))
}
