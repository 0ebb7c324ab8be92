// Package auth validates bearer tokens issued by the identity provider and exposes the
// authenticated user to handlers.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config identifies the identity provider whose HS256 tokens the API accepts.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the authenticated caller. Subject is the user ID that owns every workout,
// meal and profile row the request touches.
type Claims struct {
	Subject   string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

var (
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps signature, issuer, expiry and subject failures.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// tokenClaims is the JWT body. Grants arrive under "scopes" (array or space-separated
// string) or under the OAuth "scope" string.
type tokenClaims struct {
	jwt.RegisteredClaims
	Scopes scopeList `json:"scopes"`
	Scope  string    `json:"scope"`
}

type scopeList []string

func (l *scopeList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("scopes: %w", err)
	}
	*l = strings.Fields(joined)
	return nil
}

// Parse verifies token against cfg and returns the caller's wellness grants.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var body tokenClaims
	_, err := jwt.ParseWithClaims(token, &body,
		func(*jwt.Token) (any, error) { return []byte(cfg.Secret), nil },
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(body.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Claims{
		Subject:   body.Subject,
		Scopes:    grantedScopes(body.Scopes, strings.Fields(body.Scope)),
		ExpiresAt: body.ExpiresAt.Time,
	}, nil
}

// grantedScopes keeps the wellness API scopes from lists and drops everything else.
func grantedScopes(lists ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, list := range lists {
		for _, scope := range list {
			if _, known := knownScopes[scope]; known {
				out[scope] = struct{}{}
			}
		}
	}
	return out
}

// HasScope reports whether c grants scope.
func (c *Claims) HasScope(scope string) bool {
	return c.HasAnyScope(scope)
}

// HasAnyScope reports whether c grants at least one of scopes. Nil claims grant nothing.
func (c *Claims) HasAnyScope(scopes ...string) bool {
	if c == nil {
		return false
	}
	return slices.ContainsFunc(scopes, func(scope string) bool {
		_, ok := c.Scopes[scope]
		return ok
	})
}
