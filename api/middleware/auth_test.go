package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/motorledger/motorledger-backend/pkg/auth"
	"github.com/motorledger/motorledger-backend/pkg/config"
	"github.com/motorledger/motorledger-backend/pkg/logger"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "motorledger-test",
		ExpirationMinutes: 15,
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(authTestConfig(), time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Email:  "driver@example.com",
	})
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_seedsUserID(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	userID := uuid.New()

	var seen uuid.UUID
	handler := Auth(authTestConfig(), logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, seen)
}

func TestAuthMiddleware_rejectsMissingAndBadTokens(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})

	handler := Auth(authTestConfig(), logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"empty bearer", "Bearer  "},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddleware_rejectsExpiredToken(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})

	token, err := pkgAuth.MintAccessToken(authTestConfig(), time.Now().Add(-time.Hour), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
	})
	require.NoError(t, err)

	handler := Auth(authTestConfig(), logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext_defaultsToNil(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, uuid.Nil, UserIDFromContext(req.Context()))
}
