// Package auth verifies bearer tokens and attaches the caller's identity
// and memberships to the request context. Tokens are issued elsewhere; the
// subject claim carries the numeric user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/http/respond"
)

type contextKey struct{}

// CallerLoader builds a caller from a verified user id.
type CallerLoader interface {
	Caller(ctx context.Context, userID int64) (*access.Caller, error)
}

type Authenticator struct {
	secret []byte
	loader CallerLoader
}

func New(secret string, loader CallerLoader) *Authenticator {
	return &Authenticator{secret: []byte(secret), loader: loader}
}

// Middleware rejects requests without a valid HS256 bearer token with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			respond.Unauthenticated(w, r, "missing bearer token")
			return
		}

		userID, err := a.verify(strings.TrimSpace(raw))
		if err != nil {
			slog.Warn("rejected token", "path", r.URL.Path, "error", err)
			respond.Unauthenticated(w, r, "invalid token")

			return
		}

		caller, err := a.loader.Caller(r.Context(), userID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func (a *Authenticator) verify(raw string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("subject %q is not a user id", claims.Subject)
	}

	return userID, nil
}

// Sign issues a token for userID. The service itself never hands tokens
// out; operators and tests use it to mint them.
func Sign(secret string, userID int64, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func WithCaller(ctx context.Context, c *access.Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// CallerFrom returns the caller stored by Middleware, or nil.
func CallerFrom(ctx context.Context) *access.Caller {
	c, _ := ctx.Value(contextKey{}).(*access.Caller)
	return c
}
