package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/petmatch/auth-service/app/dto"
	httpdto "github.com/petmatch/auth-service/app/dto/http"
	"github.com/petmatch/auth-service/app/entity"
	"github.com/petmatch/auth-service/app/middleware"
	"github.com/petmatch/auth-service/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type authService interface {
	Register(ctx context.Context, userType string, in *dto.RegisterInput) (*dto.AuthResult, error)
	Login(ctx context.Context, email, password string) (*dto.AuthResult, error)
	Logout(ctx context.Context, tokenString string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, tokenString, newPassword string) error
}

type AuthController struct {
	authService authService
}

func NewAuthController(authService authService) *AuthController {
	return &AuthController{authService: authService}
}

func (c *AuthController) RegisterOwner(ctx echo.Context) error {
	return c.register(ctx, entity.UserTypeOwner)
}

func (c *AuthController) RegisterClinic(ctx echo.Context) error {
	return c.register(ctx, entity.UserTypeClinic)
}

func (c *AuthController) register(ctx echo.Context, userType string) error {
	req, err := httpdto.NewRegisterRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "Invalid request body."})
	}

	if err = req.Validate(userType == entity.UserTypeClinic); err != nil {
		logrus.WithField("email", req.Email).Debug("Register validation failed")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
	}

	logrus.WithFields(logrus.Fields{
		"email":     req.Email,
		"user_type": userType,
	}).Info("Register request received")

	result, err := c.authService.Register(ctx.Request().Context(), userType, &dto.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Locality: req.Locality,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("email", req.Email).Warn("Register failed: email already registered")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Detail: "Email already registered."})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.WithField("email", req.Email).Warn("Register failed: weak password")
			return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
		}
		if errors.Is(err, service.ErrInvalidLocality) {
			logrus.WithField("email", req.Email).Warn("Register failed: unknown locality")
			return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "locality: value is not a known locality"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   result.User.ID,
		"email":     result.User.Email,
		"user_type": result.User.UserType,
	}).Info("User registered")

	return ctx.JSON(http.StatusCreated, httpdto.AuthResponse{
		Success:   true,
		Token:     result.AccessToken,
		ExpiresIn: result.ExpiresIn,
		User:      httpdto.NewUserView(result.User),
	})
}

func (c *AuthController) Login(ctx echo.Context) error {
	req, err := httpdto.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "Invalid request body."})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Invalid email or password"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.WithField("email", req.Email).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.AuthResponse{
		Success:   true,
		Token:     result.AccessToken,
		ExpiresIn: result.ExpiresIn,
		User:      httpdto.NewUserView(result.User),
	})
}

// Logout is lenient about token state on purpose: revoking an
// already-revoked token still acks, only a credential that never verified
// is rejected.
func (c *AuthController) Logout(ctx echo.Context) error {
	tokenString, ok := middleware.BearerToken(ctx)
	if !ok {
		logrus.Debug("Logout without credential")
		return ctx.JSON(http.StatusForbidden, httpdto.ErrorResponse{Detail: "Not authenticated"})
	}

	if err := c.authService.Logout(ctx.Request().Context(), tokenString); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			logrus.Debug("Logout failed: invalid token")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Detail: "Invalid token or already expired"})
		}
		logrus.WithError(err).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.Info("Logout successful")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Success: true, Message: "Logged out successfully."})
}

// VerifyToken runs behind RequireAuth; by the time it executes the token
// already passed the full state machine.
func (c *AuthController) VerifyToken(ctx echo.Context) error {
	userID, _ := ctx.Get(middleware.ContextUserID).(string)
	email, _ := ctx.Get(middleware.ContextUserEmail).(string)
	userType, _ := ctx.Get(middleware.ContextUserType).(string)

	return ctx.JSON(http.StatusOK, httpdto.VerifyTokenResponse{
		Success:  true,
		UserID:   userID,
		Email:    email,
		UserType: userType,
	})
}

func (c *AuthController) ChangePassword(ctx echo.Context) error {
	req, err := httpdto.NewChangePasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind change password request")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "Invalid request body."})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Change password validation failed")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
	}

	userID, ok := ctx.Get(middleware.ContextUserID).(string)
	if !ok {
		logrus.Warn("Change password failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Invalid Access token."})
	}

	logrus.WithField("user_id", userID).Info("Change password request received")
	err = c.authService.ChangePassword(ctx.Request().Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", userID).Warn("Change password failed: user not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Detail: "User not found."})
		}
		if errors.Is(err, service.ErrWrongCurrentPassword) {
			logrus.WithField("user_id", userID).Warn("Change password failed: current password incorrect")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Current password is incorrect"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.WithField("user_id", userID).Warn("Change password failed: weak password")
			return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Change password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.WithField("user_id", userID).Info("Password changed")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Success: true, Message: "Password changed successfully."})
}

// ForgotPassword acks the same way whether or not the email exists, so the
// endpoint cannot be used to enumerate accounts.
func (c *AuthController) ForgotPassword(ctx echo.Context) error {
	req, err := httpdto.NewForgotPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind forgot password request")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "Invalid request body."})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Forgot password validation failed")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Password reset requested")
	if err = c.authService.ForgotPassword(ctx.Request().Context(), req.Email); err != nil {
		logrus.WithError(err).WithField("email", req.Email).Error("Forgot password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Success: true, Message: "Password reset email sent."})
}

func (c *AuthController) ResetPassword(ctx echo.Context) error {
	req, err := httpdto.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "Invalid request body."})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Reset password validation failed")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
	}

	logrus.Info("Reset password request received")
	err = c.authService.ResetPassword(ctx.Request().Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrResetTokenExpired) {
			logrus.Warn("Reset password failed: token expired")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Reset token has expired."})
		}
		if errors.Is(err, service.ErrTokenRevoked) {
			logrus.Warn("Reset password failed: token already used")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Token has been revoked"})
		}
		if errors.Is(err, service.ErrInvalidResetToken) {
			logrus.Warn("Reset password failed: invalid token")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Detail: "Invalid Reset token."})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.Warn("Reset password failed: weak password")
			return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
		}
		logrus.WithError(err).Error("Reset password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.Info("Password reset successful")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Success: true, Message: "Password updated successfully."})
}
