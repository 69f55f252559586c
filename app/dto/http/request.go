package http

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// Matches the shape rules enforced upstream of the handlers: dotted-atom
// local part (no empty or doubled atoms) and a domain with a TLD.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(\.[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)

var ErrPasswordMismatch = errors.New("Passwords do not match.")

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s: field required", name)
		}
	}
	return nil
}

func validateEmailField(email string) error {
	if !validEmail(email) {
		return errors.New("email: value is not a valid email address")
	}
	return nil
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Locality        string `json:"locality,omitempty"`
}

func NewRegisterRequestFromContext(ctx echo.Context) (*RegisterRequest, error) {
	var body RegisterRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *RegisterRequest) Validate(requireLocality bool) error {
	required := map[string]string{
		"name":            r.Name,
		"email":           r.Email,
		"password":        r.Password,
		"confirmPassword": r.ConfirmPassword,
		"phone":           r.Phone,
		"address":         r.Address,
	}
	if requireLocality {
		required["locality"] = r.Locality
	}
	if err := requireFields(required); err != nil {
		return err
	}
	if err := validateEmailField(r.Email); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *LoginRequest) Validate() error {
	if err := requireFields(map[string]string{
		"email":    r.Email,
		"password": r.Password,
	}); err != nil {
		return err
	}
	return validateEmailField(r.Email)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func NewChangePasswordRequestFromContext(ctx echo.Context) (*ChangePasswordRequest, error) {
	var body ChangePasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *ChangePasswordRequest) Validate() error {
	if err := requireFields(map[string]string{
		"currentPassword": r.CurrentPassword,
		"newPassword":     r.NewPassword,
		"confirmPassword": r.ConfirmPassword,
	}); err != nil {
		return err
	}
	if r.NewPassword != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func NewForgotPasswordRequestFromContext(ctx echo.Context) (*ForgotPasswordRequest, error) {
	var body ForgotPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *ForgotPasswordRequest) Validate() error {
	if err := requireFields(map[string]string{"email": r.Email}); err != nil {
		return err
	}
	return validateEmailField(r.Email)
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func NewResetPasswordRequestFromContext(ctx echo.Context) (*ResetPasswordRequest, error) {
	var body ResetPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *ResetPasswordRequest) Validate() error {
	if err := requireFields(map[string]string{
		"token":           r.Token,
		"newPassword":     r.NewPassword,
		"confirmPassword": r.ConfirmPassword,
	}); err != nil {
		return err
	}
	if r.NewPassword != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Locality *string `json:"locality,omitempty"`
}

func NewUpdateProfileRequestFromContext(ctx echo.Context) (*UpdateProfileRequest, error) {
	var body UpdateProfileRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Email != nil {
		return validateEmailField(*r.Email)
	}
	return nil
}

type DebugResetTokenRequest struct {
	Email string `json:"email"`
}

func NewDebugResetTokenRequestFromContext(ctx echo.Context) (*DebugResetTokenRequest, error) {
	var body DebugResetTokenRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *DebugResetTokenRequest) Validate() error {
	if err := requireFields(map[string]string{"email": r.Email}); err != nil {
		return err
	}
	return validateEmailField(r.Email)
}
