package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

func init() {
	domain.PasswordCost = bcrypt.MinCost
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *domain.Settings) error {
	return m.Called(ctx, s).Error(0)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Default timezone stores no settings", func(t *testing.T) {
		users, settings := new(MockUserRepository), new(MockSettingsRepository)
		svc := NewAuthService(users, settings, nil)
		users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.Register(ctx, RegisterInput{Email: "Nursing@Uni.IT", Password: "StudyHard2024"})

		require.NoError(t, err)
		assert.Equal(t, "nursing@uni.it", user.Email)
		assert.NotEmpty(t, user.ID)
		users.AssertExpectations(t)
		settings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Timezone seeds settings", func(t *testing.T) {
		users, settings := new(MockUserRepository), new(MockSettingsRepository)
		svc := NewAuthService(users, settings, nil)
		users.On("Create", ctx, mock.Anything).Return(nil)
		settings.On("Save", ctx, mock.MatchedBy(func(s *domain.Settings) bool {
			return s.Timezone == "Europe/Rome" && s.Version == 0 && len(s.RestDays) == 0
		})).Return(nil)

		user, err := svc.Register(ctx, RegisterInput{Email: "a@b.it", Password: "StudyHard2024", Timezone: "Europe/Rome"})

		require.NoError(t, err)
		settings.AssertExpectations(t)
		saved := settings.Calls[0].Arguments.Get(1).(*domain.Settings)
		assert.Equal(t, user.ID, saved.UserID)
	})

	t.Run("Settings failure keeps the account", func(t *testing.T) {
		users, settings := new(MockUserRepository), new(MockSettingsRepository)
		svc := NewAuthService(users, settings, nil)
		users.On("Create", ctx, mock.Anything).Return(nil)
		settings.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		user, err := svc.Register(ctx, RegisterInput{Email: "a@b.it", Password: "StudyHard2024", Timezone: "Asia/Tokyo"})

		require.NoError(t, err)
		assert.NotNil(t, user)
	})

	invalid := []struct {
		name  string
		input RegisterInput
		err   error
	}{
		{"Bad email", RegisterInput{Email: "not-an-email", Password: "StudyHard2024"}, domain.ErrInvalidEmail},
		{"Short password", RegisterInput{Email: "a@b.it", Password: "short"}, domain.ErrPasswordTooShort},
		{"Unknown timezone", RegisterInput{Email: "a@b.it", Password: "StudyHard2024", Timezone: "Mars/Olympus"}, domain.ErrInvalidTimezone},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			svc := NewAuthService(users, nil, nil)

			user, err := svc.Register(ctx, tt.input)

			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, user)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("Duplicate email surfaces from the repository", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewAuthService(users, nil, nil)
		users.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		_, err := svc.Register(ctx, RegisterInput{Email: "dup@b.it", Password: "StudyHard2024"})

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	stored, err := domain.NewUser("user-1", "login@kanso.app", "StudyHard2024")
	require.NoError(t, err)

	t.Run("Issues a token the validator accepts", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := NewTokenService(testSecret, testIssuer, time.Hour, users)
		svc := NewAuthService(users, nil, tokens)
		users.On("GetByEmail", ctx, "login@kanso.app").Return(stored, nil)
		users.On("GetByID", mock.Anything, "user-1").Return(stored, nil)

		res, err := svc.Login(ctx, LoginInput{Email: " Login@Kanso.app ", Password: "StudyHard2024"})
		require.NoError(t, err)
		assert.Equal(t, "user-1", res.User.ID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), res.Token.ExpiresAt, 2*time.Second)

		id, err := tokens.ValidateToken(ctx, res.Token.Value)
		require.NoError(t, err)
		assert.Equal(t, "user-1", id)
	})

	t.Run("Failures are indistinguishable", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewAuthService(users, nil, nil)
		users.On("GetByEmail", ctx, "login@kanso.app").Return(stored, nil)
		users.On("GetByEmail", ctx, "ghost@kanso.app").Return(nil, domain.ErrUserNotFound)

		for _, in := range []LoginInput{
			{Email: "login@kanso.app", Password: "WrongPassword1"},
			{Email: "ghost@kanso.app", Password: "StudyHard2024"},
			{Email: "garbage", Password: "StudyHard2024"},
		} {
			res, err := svc.Login(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials, in.Email)
			assert.Nil(t, res)
		}
	})

	t.Run("Repository outage is not a credentials error", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewAuthService(users, nil, nil)
		users.On("GetByEmail", ctx, "login@kanso.app").Return(nil, errors.New("connection refused"))

		_, err := svc.Login(ctx, LoginInput{Email: "login@kanso.app", Password: "StudyHard2024"})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
