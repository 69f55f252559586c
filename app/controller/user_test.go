package controller_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/petmatch/auth-service/app/controller"
	"github.com/petmatch/auth-service/app/dto"
	"github.com/petmatch/auth-service/app/entity"
	"github.com/petmatch/auth-service/app/middleware"
	"github.com/petmatch/auth-service/app/service"

	"github.com/labstack/echo/v4"
)

type stubProfileService struct {
	user      *entity.User
	getErr    error
	updateErr error

	patch *dto.ProfilePatch
}

func (s *stubProfileService) GetProfile(_ context.Context, _ string) (*entity.User, error) {
	return s.user, s.getErr
}

func (s *stubProfileService) UpdateProfile(_ context.Context, _ string, patch *dto.ProfilePatch) (*entity.User, error) {
	s.patch = patch
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.user, nil
}

type stubAccountDeleter struct {
	err error
}

func (s *stubAccountDeleter) DeleteAccount(_ context.Context, _ string) error {
	return s.err
}

func principalSetup(c echo.Context) {
	c.Set(middleware.ContextUserID, "11111111-1111-1111-1111-111111111111")
}

func TestGetProfileOK(t *testing.T) {
	clinic := fixtureUser()
	clinic.UserType = entity.UserTypeClinic
	clinic.Locality = sql.NullString{String: "Suba", Valid: true}
	uc := controller.NewUserController(&stubProfileService{user: clinic}, &stubAccountDeleter{})

	rec := doJSON(t, uc.GetProfile, http.MethodGet, "/api/v1/user/profile", "", principalSetup)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		ID        string  `json:"id"`
		UserType  string  `json:"userType"`
		Email     string  `json:"email"`
		Locality  *string `json:"locality"`
		CreatedAt string  `json:"createdAt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.UserType != "clinic" {
		t.Fatalf("expected userType clinic, got %q", body.UserType)
	}
	if body.Locality == nil || *body.Locality != "Suba" {
		t.Fatalf("locality missing from view: %s", rec.Body.String())
	}
	if body.CreatedAt == "" {
		t.Fatalf("createdAt missing from view: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("profile view must never carry password material: %s", rec.Body.String())
	}
}

func TestGetProfileOwnerOmitsLocality(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{user: fixtureUser()}, &stubAccountDeleter{})

	rec := doJSON(t, uc.GetProfile, http.MethodGet, "/api/v1/user/profile", "", principalSetup)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "locality") {
		t.Fatalf("owner view must omit locality: %s", rec.Body.String())
	}
}

func TestGetProfileNotFound(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{getErr: service.ErrUserNotFound}, &stubAccountDeleter{})

	rec := doJSON(t, uc.GetProfile, http.MethodGet, "/api/v1/user/profile", "", principalSetup)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := detail(t, rec); got != "User not found." {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestUpdateProfileOK(t *testing.T) {
	svc := &stubProfileService{user: fixtureUser()}
	uc := controller.NewUserController(svc, &stubAccountDeleter{})

	rec := doJSON(t, uc.UpdateProfile, http.MethodPatch, "/api/v1/user/profile",
		`{"name": "New Name", "phone": "573009999999"}`, principalSetup)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.patch == nil || svc.patch.Name == nil || *svc.patch.Name != "New Name" {
		t.Fatalf("name not forwarded in patch: %+v", svc.patch)
	}
	// Absent fields stay nil so the service can tell "unset" from "empty".
	if svc.patch.Address != nil || svc.patch.Locality != nil || svc.patch.Email != nil {
		t.Fatalf("absent fields must stay nil: %+v", svc.patch)
	}
}

func TestUpdateProfileInvalidEmail(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{}, &stubAccountDeleter{})

	rec := doJSON(t, uc.UpdateProfile, http.MethodPatch, "/api/v1/user/profile",
		`{"email": "not-an-email"}`, principalSetup)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if got := detail(t, rec); got != "email: value is not a valid email address" {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestUpdateProfileOwnerLocality(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{updateErr: service.ErrLocalityNotAllowed}, &stubAccountDeleter{})

	rec := doJSON(t, uc.UpdateProfile, http.MethodPatch, "/api/v1/user/profile",
		`{"locality": "Chapinero"}`, principalSetup)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := detail(t, rec); got != "Only clinics can update 'locality'." {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestUpdateProfileUnknownLocality(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{updateErr: service.ErrInvalidLocality}, &stubAccountDeleter{})

	rec := doJSON(t, uc.UpdateProfile, http.MethodPatch, "/api/v1/user/profile",
		`{"locality": "Atlantis"}`, principalSetup)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if got := detail(t, rec); got != "locality: value is not a known locality" {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{updateErr: service.ErrUserExists}, &stubAccountDeleter{})

	rec := doJSON(t, uc.UpdateProfile, http.MethodPatch, "/api/v1/user/profile",
		`{"email": "taken@example.com"}`, principalSetup)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := detail(t, rec); got != "Email already registered." {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestDeleteAccountOK(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{}, &stubAccountDeleter{})

	rec := doJSON(t, uc.DeleteAccount, http.MethodDelete, "/api/v1/user/account", "", principalSetup)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Account deleted successfully.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestDeleteAccountNotFound(t *testing.T) {
	uc := controller.NewUserController(&stubProfileService{}, &stubAccountDeleter{err: service.ErrUserNotFound})

	rec := doJSON(t, uc.DeleteAccount, http.MethodDelete, "/api/v1/user/account", "", principalSetup)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := detail(t, rec); got != "User not found." {
		t.Fatalf("unexpected detail: %q", got)
	}
}

type stubResetTokenIssuer struct {
	token string
	err   error
}

func (s *stubResetTokenIssuer) IssueResetToken(_ context.Context, _ string) (string, error) {
	return s.token, s.err
}

func TestDebugResetTokenOK(t *testing.T) {
	dc := controller.NewDebugController(&stubResetTokenIssuer{token: "reset.jwt.token"})

	rec := doJSON(t, dc.ResetToken, http.MethodPost, "/api/v1/debug/reset-token",
		`{"email": "owner@example.com"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Token != "reset.jwt.token" {
		t.Fatalf("unexpected token: %q", body.Token)
	}
}

func TestDebugResetTokenUnknownEmail(t *testing.T) {
	dc := controller.NewDebugController(&stubResetTokenIssuer{err: service.ErrUserNotFound})

	rec := doJSON(t, dc.ResetToken, http.MethodPost, "/api/v1/debug/reset-token",
		`{"email": "nonexistent@example.com"}`, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := detail(t, rec); got != "User not found." {
		t.Fatalf("unexpected detail: %q", got)
	}
}
