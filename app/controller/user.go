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

type profileService interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, patch *dto.ProfilePatch) (*entity.User, error)
}

type accountDeleter interface {
	DeleteAccount(ctx context.Context, userID string) error
}

type UserController struct {
	profileService profileService
	authService    accountDeleter
}

func NewUserController(profileService profileService, authService accountDeleter) *UserController {
	return &UserController{profileService: profileService, authService: authService}
}

func (c *UserController) GetProfile(ctx echo.Context) error {
	userID, _ := ctx.Get(middleware.ContextUserID).(string)

	user, err := c.profileService.GetProfile(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", userID).Warn("Profile fetch failed: user not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Detail: "User not found."})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Profile fetch failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewUserView(user))
}

func (c *UserController) UpdateProfile(ctx echo.Context) error {
	req, err := httpdto.NewUpdateProfileRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind update profile request")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "Invalid request body."})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Update profile validation failed")
		return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: err.Error()})
	}

	userID, _ := ctx.Get(middleware.ContextUserID).(string)

	logrus.WithField("user_id", userID).Info("Profile update request received")
	user, err := c.profileService.UpdateProfile(ctx.Request().Context(), userID, &dto.ProfilePatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Locality: req.Locality,
	})
	if err != nil {
		if errors.Is(err, service.ErrLocalityNotAllowed) {
			logrus.WithField("user_id", userID).Warn("Profile update failed: locality on owner account")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Detail: "Only clinics can update 'locality'."})
		}
		if errors.Is(err, service.ErrInvalidLocality) {
			logrus.WithField("user_id", userID).Warn("Profile update failed: unknown locality")
			return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Detail: "locality: value is not a known locality"})
		}
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("user_id", userID).Warn("Profile update failed: email already registered")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Detail: "Email already registered."})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", userID).Warn("Profile update failed: user not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Detail: "User not found."})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Profile update failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.WithField("user_id", userID).Info("Profile updated")
	return ctx.JSON(http.StatusOK, httpdto.NewUserView(user))
}

func (c *UserController) DeleteAccount(ctx echo.Context) error {
	userID, _ := ctx.Get(middleware.ContextUserID).(string)

	logrus.WithField("user_id", userID).Info("Account deletion request received")
	if err := c.authService.DeleteAccount(ctx.Request().Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", userID).Warn("Account deletion failed: user not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Detail: "User not found."})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Account deletion failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Detail: "Internal server error."})
	}

	logrus.WithField("user_id", userID).Info("Account deleted")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Success: true, Message: "Account deleted successfully."})
}
