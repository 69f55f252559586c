package controller

import (
	"context"
	"errors"
	"net/http"

	httpdto "github.com/petmatch/auth-service/app/dto/http"
	"github.com/petmatch/auth-service/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type resetTokenIssuer interface {
	IssueResetToken(ctx context.Context, email string) (string, error)
}

// DebugController backs automated reset-flow testing when no email channel
// is wired. Mounted only when DEBUG_ENDPOINTS is set; production deployments
// leave it off.
type DebugController struct {
	authService resetTokenIssuer
}

func NewDebugController(authService resetTokenIssuer) *DebugController {
	return &DebugController{authService: authService}
}

func (c *DebugController) ResetToken(ctx echo.Context) error {
	req, err := httpdto.NewDebugResetTokenRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind debug reset token request")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "Invalid request body."})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
	}

	token, err := c.authService.IssueResetToken(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Detail: "User not found."})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Debug reset token failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.WithField("email", req.Email).Warn("Debug reset token issued")
	return ctx.JSON(http.StatusOK, httpdto.DebugResetTokenResponse{Token: token})
}
