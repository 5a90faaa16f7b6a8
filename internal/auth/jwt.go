package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	roleUser = "user"
	// ContextUserID is the echo context key holding the authenticated user ID
	ContextUserID = "user_id"

	defaultTokenTTL = 7 * 24 * time.Hour
)

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and validates HS256 user tokens
type Auth struct {
	secret []byte
	ttl    time.Duration
}

// New creates an Auth with the shared signing secret
func New(secret string, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Auth{secret: []byte(secret), ttl: ttl}
}

// GenerateUserToken generates a JWT token for user authentication
func (a *Auth) GenerateUserToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user ID cannot be empty")
	}

	now := time.Now()
	claims := &JWTClaims{
		UserID: userID,
		Role:   roleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (a *Auth) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}

// errorBody mirrors the API error response shape
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Middleware rejects requests without a valid user bearer token and stores
// the user ID under ContextUserID.
func (a *Auth) Middleware(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, found := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !found || token == "" {
				return c.JSON(http.StatusUnauthorized, errorBody{
					Error:   "missing_token",
					Message: "JWT token is required in Authorization header",
				})
			}

			claims, err := a.ValidateToken(token)
			if err != nil {
				logger.Warn("Request rejected: invalid token",
					zap.String("path", c.Path()),
					zap.Error(err))
				return c.JSON(http.StatusUnauthorized, errorBody{
					Error:   "invalid_token",
					Message: "Invalid or expired JWT token",
				})
			}

			if claims.Role != roleUser || claims.UserID == "" {
				logger.Warn("Request rejected: invalid role", zap.String("role", claims.Role))
				return c.JSON(http.StatusForbidden, errorBody{
					Error:   "invalid_role",
					Message: "Only user tokens are allowed",
				})
			}

			c.Set(ContextUserID, claims.UserID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user ID set by Middleware
func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}
