package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type AuthService struct {
	users    domain.UserRepository
	settings domain.SettingsRepository
	tokens   *TokenService
}

// NewAuthService wires account management. settings may be nil, in which
// case new accounts start from the default settings on first read.
func NewAuthService(users domain.UserRepository, settings domain.SettingsRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		users:    users,
		settings: settings,
		tokens:   tokens,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	// Timezone is optional. It seeds the day boundaries used for streaks.
	Timezone string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token AccessToken
	User  *domain.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(uuid.NewString(), input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	settings := domain.DefaultSettings(user.ID)
	if err := settings.SetTimezone(input.Timezone); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	if s.settings != nil && settings.Timezone != domain.DefaultTimezone {
		// The account exists at this point, a failure here only loses the
		// timezone preference.
		if err := s.settings.Save(ctx, settings); err != nil {
			zap.L().Warn("could not seed settings for new user",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return user, nil
}

// Login checks the credentials and issues a bearer token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}
