package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct{ userID uuid.UUID }

func (c testClaims) GetUserID() uuid.UUID { return c.userID }

// testTokenValidator accepts only the tokens it was given.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func (v *testTokenValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	userID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims{userID: userID}, nil
}

func protectedHandler(t *testing.T, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		userID, err := GetUserID(r)
		require.NoError(t, err)
		_, _ = w.Write([]byte(userID.String()))
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	validator := &testTokenValidator{validTokens: map[string]uuid.UUID{"good": userID}}

	called := false
	handler := AuthMiddleware(validator)(protectedHandler(t, &called))

	for _, header := range []string{"Bearer good", "bearer good", "BEARER   good"} {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.True(t, called)
		assert.Equal(t, userID.String(), w.Body.String())
	}
}

func TestAuthMiddleware_Rejected(t *testing.T) {
	validator := &testTokenValidator{validTokens: map[string]uuid.UUID{
		"good":    uuid.New(),
		"niluser": uuid.Nil,
	}}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"no token", "Bearer"},
		{"extra parts", "Bearer good extra"},
		{"unknown token", "Bearer bad"},
		{"nil user id", "Bearer niluser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(validator)(protectedHandler(t, &called))

			req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, UnauthorizedMessage, body["error"])
		})
	}
}

func TestGetUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserID(req)
	assert.Error(t, err)

	userID := uuid.New()
	got, err := GetUserID(WithUserID(req, userID))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
