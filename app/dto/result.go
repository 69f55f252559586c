package dto

import "github.com/petmatch/auth-service/app/entity"

type AuthResult struct {
	User        *entity.User
	AccessToken string
	ExpiresIn   int64
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Locality string
}

// ProfilePatch carries a partial profile update; nil means "leave as is".
type ProfilePatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Locality *string
}
