package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/petmatch/auth-service/app/dto"
	"github.com/petmatch/auth-service/app/entity"
	"github.com/petmatch/auth-service/app/repository"
)

// ErrLocalityNotAllowed is a cross-kind rule, not a shape problem: only
// clinic accounts carry a locality.
var ErrLocalityNotAllowed = errors.New("only clinics can update locality")

type ProfileService struct {
	userRepo *repository.UserRepository
}

func NewProfileService(userRepo *repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial patch; any accepted subset of mutable
// fields refreshes updated_at.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, patch *dto.ProfilePatch) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if patch.Locality != nil {
		if !user.IsClinic() {
			return nil, ErrLocalityNotAllowed
		}
		if !entity.ValidLocality(*patch.Locality) {
			return nil, ErrInvalidLocality
		}
		user.Locality = sql.NullString{String: *patch.Locality, Valid: true}
	}

	if patch.Email != nil {
		canonical := NormalizeEmail(*patch.Email)
		if canonical != user.CanonicalEmail {
			existing, err := s.userRepo.FindByCanonicalEmail(ctx, canonical)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrUserExists
			}
		}
		user.Email = *patch.Email
		user.CanonicalEmail = canonical
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return user, nil
}
