package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/petmatch/auth-service/app/dto"
	"github.com/petmatch/auth-service/app/entity"
	"github.com/petmatch/auth-service/app/repository"
	"github.com/petmatch/auth-service/config"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists           = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid access token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrInvalidResetToken    = errors.New("invalid reset token")
	ErrResetTokenExpired    = errors.New("reset token has expired")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrWeakPassword         = errors.New("password does not meet policy requirements")
	ErrInvalidLocality      = errors.New("locality is not a known locality")
)

// weakPasswordError carries the policy message verbatim — it becomes the
// HTTP error detail — while still matching ErrWeakPassword under errors.Is.
type weakPasswordError struct {
	reason string
}

func (e weakPasswordError) Error() string { return e.reason }

func (e weakPasswordError) Is(target error) bool { return target == ErrWeakPassword }

type AuthService struct {
	db          *sql.DB
	userRepo    *repository.UserRepository
	revokedRepo *repository.RevokedTokenRepository
	tokens      *TokenCodec
	mailer      ResetMailer
	cfg         *config.Config
}

func NewAuthService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	revokedRepo *repository.RevokedTokenRepository,
	tokens *TokenCodec,
	mailer ResetMailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:          db,
		userRepo:    userRepo,
		revokedRepo: revokedRepo,
		tokens:      tokens,
		mailer:      mailer,
		cfg:         cfg,
	}
}

// Register creates an account and authenticates it in one step, so a new
// user is immediately usable without a second round trip.
func (s *AuthService) Register(ctx context.Context, userType string, in *dto.RegisterInput) (*dto.AuthResult, error) {
	canonicalEmail := NormalizeEmail(in.Email)

	existing, err := s.userRepo.FindByCanonicalEmail(ctx, canonicalEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if err := s.cfg.PasswordPolicy.Validate(in.Password); err != nil {
		return nil, weakPasswordError{reason: err.Error()}
	}

	if userType == entity.UserTypeClinic && !entity.ValidLocality(in.Locality) {
		return nil, ErrInvalidLocality
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:             uuid.New().String(),
		UserType:       userType,
		Email:          in.Email,
		CanonicalEmail: canonicalEmail,
		PasswordHash:   string(hashedPassword),
		Name:           in.Name,
		Phone:          in.Phone,
		Address:        in.Address,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if userType == entity.UserTypeClinic {
		user.Locality = sql.NullString{String: in.Locality, Valid: true}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	accessToken, _, err := s.tokens.Issue(user, TokenTypeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Login issues a fresh access token. Prior tokens stay valid; every login is
// an independent, independently revocable session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.AuthResult, error) {
	user, err := s.userRepo.FindByCanonicalEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, _, err := s.tokens.Issue(user, TokenTypeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Logout revokes the token's identifier. Revoking an already-revoked
// identifier still succeeds; logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.TokenType != TokenTypeAccess || claims.ExpiredAt(time.Now()) {
		return ErrInvalidToken
	}

	return s.revokedRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// VerifyAccessToken applies the token state machine in its contractual
// order: signature and structure, then expiry, then revocation (identifier
// and subject watermark).
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}

	if claims.ExpiredAt(time.Now()) {
		return nil, ErrTokenExpired
	}

	revoked, err := s.revokedRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	watermark, err := s.revokedRepo.WatermarkFor(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !watermark.IsZero() && claims.CoveredBy(watermark) {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// ChangePassword replaces the hash for an authenticated session. Other
// outstanding access tokens are left alone; only the reset flow and account
// deletion revoke broadly. Setting the same password again is accepted.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongCurrentPassword
	}

	if err := s.cfg.PasswordPolicy.Validate(newPassword); err != nil {
		return weakPasswordError{reason: err.Error()}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword never reveals whether the email exists. For a known account
// it issues a short-lived reset token and hands it to the mailer; the caller
// acks either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByCanonicalEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	resetToken, _, err := s.tokens.Issue(user, TokenTypeReset, s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(ctx, user, resetToken)
}

// IssueResetToken backs the debug-only reset-token endpoint used by
// automated reset-flow testing when no email channel is wired.
func (s *AuthService) IssueResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByCanonicalEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	resetToken, _, err := s.tokens.Issue(user, TokenTypeReset, s.cfg.ResetTokenTTL)
	if err != nil {
		return "", err
	}
	return resetToken, nil
}

// ResetPassword consumes a reset token: the hash is replaced and the token's
// identifier is revoked in the same call, so the token is single use.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return ErrInvalidResetToken
	}
	if claims.TokenType != TokenTypeReset {
		return ErrInvalidResetToken
	}

	if claims.ExpiredAt(time.Now()) {
		return ErrResetTokenExpired
	}

	revoked, err := s.revokedRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}

	if err := s.cfg.PasswordPolicy.Validate(newPassword); err != nil {
		return weakPasswordError{reason: err.Error()}
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.revokedRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// DeleteAccount removes the user and sets the subject's revocation
// watermark to now in one transaction, invalidating every outstanding
// access token for the account, including the one used to delete it.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txUserRepo := repository.NewUserRepository(tx)
	if err := txUserRepo.Delete(ctx, userID); err != nil {
		return err
	}

	txRevokedRepo := repository.NewRevokedTokenRepository(tx)
	if err := txRevokedRepo.SetWatermark(ctx, userID, time.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

// PurgeExpiredRevocations drops revocation entries whose tokens have
// already expired; a revoked-but-expired token is moot.
func (s *AuthService) PurgeExpiredRevocations(ctx context.Context) (int64, error) {
	return s.revokedRepo.DeleteExpired(ctx)
}
