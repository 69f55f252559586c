package http

import (
	"time"

	"github.com/petmatch/auth-service/app/entity"
)

// UserView is the password-free projection of an account. Locality appears
// only on clinic accounts.
type UserView struct {
	ID        string    `json:"id"`
	UserType  string    `json:"userType"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Locality  *string   `json:"locality,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUserView(user *entity.User) UserView {
	view := UserView{
		ID:        user.ID,
		UserType:  user.UserType,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Address:   user.Address,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Locality.Valid {
		locality := user.Locality.String
		view.Locality = &locality
	}
	return view
}

type AuthResponse struct {
	Success   bool     `json:"success"`
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"`
	User      UserView `json:"user"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyTokenResponse keeps the wire shape of the verification endpoint:
// snake_case, unlike the profile views.
type VerifyTokenResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

type DebugResetTokenResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
