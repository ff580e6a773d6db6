package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)

	token, err := svc.Issue("user-123", "u@example.com")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
}

func TestVerifyExpiredToken(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", -time.Minute)

	token, err := svc.Issue("user-123", "u@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenService("secret-a", time.Hour).Issue("user-123", "u@example.com")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyMalformedToken(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService("secret", time.Hour).Verify("not-a-token")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("secret", time.Hour)

	var gotClaims *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := svc.Middleware(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cars", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cars", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cars", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.Issue("user-1", "u@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/cars", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "user-1", gotClaims.UserID)
	})
}
