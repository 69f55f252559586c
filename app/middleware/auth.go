package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	httpdto "github.com/petmatch/auth-service/app/dto/http"
	"github.com/petmatch/auth-service/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserType  = "user_type"
)

type accessTokenVerifier interface {
	VerifyAccessToken(ctx context.Context, tokenString string) (*service.Claims, error)
}

type AuthMiddleware struct {
	authService accessTokenVerifier
}

func NewAuthMiddleware(authService accessTokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// BearerToken pulls the bearer credential out of the Authorization header.
// Absence of a credential and presence of a bad one are different failures.
func BearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, ok := BearerToken(c)
		if !ok {
			logrus.Debug("Missing or malformed authorization header")
			return c.JSON(http.StatusForbidden, httpdto.ErrorResponse{Detail: "Not authenticated"})
		}

		claims, err := m.authService.VerifyAccessToken(c.Request().Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				logrus.Debug("Expired access token")
				return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Access token has expired."})
			case errors.Is(err, service.ErrTokenRevoked):
				logrus.Debug("Revoked access token")
				return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Token has been revoked"})
			case errors.Is(err, service.ErrInvalidToken):
				logrus.Debug("Invalid access token")
				return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Invalid Access token."})
			default:
				logrus.WithError(err).Error("Access token verification failed")
				return c.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
			}
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserType, claims.UserType)

		return next(c)
	}
}
