package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	tokenAudience     = "study-api"
	userLookupTimeout = 2 * time.Second
)

// AccessToken is a signed bearer token and the moment it stops working.
type AccessToken struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService issues HS256 bearer tokens scoped to the study API and
// resolves them back to a user that still exists.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	users     domain.UserRepository
	now       func() time.Time
}

func NewTokenService(secretKey, issuer string, ttl time.Duration, users domain.UserRepository) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
		users:     users,
		now:       time.Now,
	}
}

func (s *TokenService) Issue(userID string) (AccessToken, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString(s.secretKey)
	if err != nil {
		return AccessToken{}, fmt.Errorf("token service: sign: %w", err)
	}

	return AccessToken{Value: signed, ExpiresAt: expires.UTC().Truncate(time.Second)}, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secretKey, nil
}

// ValidateToken returns the user id the token was issued to. Every failure
// wraps ErrInvalidToken.
func (s *TokenService) ValidateToken(ctx context.Context, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	ctx, cancel := context.WithTimeout(ctx, userLookupTimeout)
	defer cancel()

	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		return "", fmt.Errorf("%w: user no longer exists: %w", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}
