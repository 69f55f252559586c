package service

import (
	"fmt"
	"time"

	"github.com/petmatch/auth-service/app/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess = "access"
	TokenTypeReset  = "reset"
)

// Claims is the self-describing payload of every issued token. The subject
// is the user id and the ID (jti) is the revocation key, unique per issuance.
type Claims struct {
	Email     string `json:"email"`
	UserType  string `json:"user_type"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

func (c *Claims) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt == nil || c.ExpiresAt.Time.Before(now)
}

// CoveredBy reports whether a revocation watermark invalidates the token.
// iat carries whole-second precision and the watermark column may too, so a
// token minted in the same second as the watermark counts as covered; no
// token can legitimately be issued for a subject after its watermark is set.
func (c *Claims) CoveredBy(watermark time.Time) bool {
	return c.IssuedAt != nil && !c.IssuedAt.Time.After(watermark)
}

// TokenCodec signs and verifies compact HS256 tokens. Parse fails closed on
// structure, signature, or algorithm problems; expiry is left to the caller
// so expired and malformed tokens surface as distinct error kinds.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

func (t *TokenCodec) Issue(user *entity.User, tokenType string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Email:     user.Email,
		UserType:  user.UserType,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (t *TokenCodec) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
