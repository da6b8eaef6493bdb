package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/http/auth"
)

const secret = "test-secret"

type loaderFunc func(ctx context.Context, userID int64) (*access.Caller, error)

func (f loaderFunc) Caller(ctx context.Context, userID int64) (*access.Caller, error) {
	return f(ctx, userID)
}

func TestMiddleware(t *testing.T) {
	loader := loaderFunc(func(_ context.Context, userID int64) (*access.Caller, error) {
		if userID == 13 {
			return nil, apperr.Storage("organization.memberships", errors.New("down"))
		}

		return &access.Caller{UserID: userID, Memberships: map[int64][]access.Role{1: {access.RoleUser}}}, nil
	})

	var seen *access.Caller

	h := auth.New(secret, loader).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.CallerFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	valid, err := auth.Sign(secret, 7, time.Hour)
	require.NoError(t, err)

	expired, err := auth.Sign(secret, 7, -time.Hour)
	require.NoError(t, err)

	foreign, err := auth.Sign("other-secret", 7, time.Hour)
	require.NoError(t, err)

	failing, err := auth.Sign(secret, 13, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7"}).SignedString([]byte(secret))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "Valid", header: "Bearer " + valid, want: http.StatusNoContent},
		{name: "Missing", header: "", want: http.StatusUnauthorized},
		{name: "NotBearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "WrongSecret", header: "Bearer " + foreign, want: http.StatusUnauthorized},
		{name: "NoExpiry", header: "Bearer " + noExpiry, want: http.StatusUnauthorized},
		{name: "NonNumericSubject", header: "Bearer " + badSubject, want: http.StatusUnauthorized},
		{name: "MembershipLookupFails", header: "Bearer " + failing, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, int64(7), seen.UserID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestSign_EmptySecret(t *testing.T) {
	_, err := auth.Sign("", 1, time.Hour)
	assert.Error(t, err)
}
