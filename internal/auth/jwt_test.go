package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAuth_TokenRoundTrip(t *testing.T) {
	a := New("secret", time.Hour)

	token, err := a.GenerateUserToken("user-1")
	require.NoError(t, err)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user", claims.Role)

	_, err = New("other-secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	_, err = a.GenerateUserToken("")
	assert.Error(t, err)
}

func TestAuth_ExpiredToken(t *testing.T) {
	a := New("secret", time.Hour)
	claims := &JWTClaims{
		UserID: "user-1",
		Role:   roleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuth_Middleware(t *testing.T) {
	a := New("secret", time.Hour)
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	}, a.Middleware(zaptest.NewLogger(t)))

	valid, err := a.GenerateUserToken("user-42")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "missing_token"},
		{"malformed", "Bearer nope", http.StatusUnauthorized, "invalid_token"},
		{"valid", "Bearer " + valid, http.StatusOK, "user-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}
