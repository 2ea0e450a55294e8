package domain

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrSettingsConflict = errors.New("settings version conflict")
	ErrInvalidRestDays  = errors.New("invalid rest days (must be 0-6)")
	ErrInvalidTimezone  = errors.New("invalid timezone")
)

const DefaultTimezone = "UTC"

// RestDays holds the weekdays (0=Sunday ... 6=Saturday) on which an idle day
// does not break a streak. Duplicates are tolerated.
type RestDays []int

func (r RestDays) Validate() error {
	for _, d := range r {
		if d < 0 || d > 6 {
			return ErrInvalidRestDays
		}
	}
	return nil
}

func (r RestDays) Contains(w time.Weekday) bool {
	for _, d := range r {
		if d == int(w) {
			return true
		}
	}
	return false
}

// Normalize returns the sorted set without duplicates.
func (r RestDays) Normalize() RestDays {
	if len(r) == 0 {
		return RestDays{}
	}

	seen := make(map[int]bool)
	out := make(RestDays, 0, len(r))
	for _, d := range r {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}

	sort.Ints(out)
	return out
}

type Settings struct {
	UserID           string    `json:"user_id" db:"user_id"`
	RestDays         RestDays  `json:"rest_days" db:"-"`
	Timezone         string    `json:"timezone" db:"timezone"`
	CurrentSubjectID *string   `json:"current_subject_id,omitempty" db:"current_subject_id"`
	Version          int       `json:"version" db:"version"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:   userID,
		RestDays: RestDays{},
		Timezone: DefaultTimezone,
	}
}

func (s *Settings) SetRestDays(days []int) error {
	rd := RestDays(days)
	if err := rd.Validate(); err != nil {
		return err
	}
	s.RestDays = rd.Normalize()
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Settings) SetTimezone(name string) error {
	if name == "" {
		name = DefaultTimezone
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ErrInvalidTimezone
	}
	s.Timezone = name
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (s *Settings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
