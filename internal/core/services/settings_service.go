package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type SettingsService struct {
	repo domain.SettingsRepository
}

func NewSettingsService(repo domain.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// loadSettings returns stored settings or the defaults for a user who never saved any.
func loadSettings(ctx context.Context, repo domain.SettingsRepository, userID string) (*domain.Settings, error) {
	settings, err := repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return domain.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: failed to load: %w", err)
	}
	if settings.RestDays == nil {
		settings.RestDays = domain.RestDays{}
	}
	return settings, nil
}

func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	return loadSettings(ctx, s.repo, userID)
}

func checkSettingsVersion(settings *domain.Settings, version int) error {
	if version > 0 && settings.Version != version {
		return fmt.Errorf("%w: client v%d vs server v%d", domain.ErrSettingsConflict, version, settings.Version)
	}
	return nil
}

// SaveRestDays replaces the rest-day set. A positive version must match the stored one.
func (s *SettingsService) SaveRestDays(ctx context.Context, userID string, days []int, version int) (*domain.Settings, error) {
	settings, err := loadSettings(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := checkSettingsVersion(settings, version); err != nil {
		return nil, err
	}

	if err := settings.SetRestDays(days); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) SetTimezone(ctx context.Context, userID, timezone string, version int) (*domain.Settings, error) {
	settings, err := loadSettings(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := checkSettingsVersion(settings, version); err != nil {
		return nil, err
	}

	if err := settings.SetTimezone(timezone); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
