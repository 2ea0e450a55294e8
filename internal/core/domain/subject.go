package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSubjectTitleEmpty   = errors.New("subject title cannot be empty")
	ErrSubjectTitleTooLong = errors.New("subject title is too long (max 100 chars)")
	ErrSubjectDescTooLong  = errors.New("subject description is too long (max 500 chars)")
	ErrInvalidColor        = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidPosition     = errors.New("position cannot be negative")
	ErrSubjectArchived     = errors.New("cannot update an archived subject")
	ErrEmptyCycle          = errors.New("study cycle has no active subjects")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultIcon  = "book"
	DefaultColor = "#4F46E5"
	MaxTitleLen  = 100
	MaxDescLen   = 500
)

// Subject is one entry of the user's study cycle.
type Subject struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Color       string     `json:"color" db:"color"`
	Icon        string     `json:"icon" db:"icon"`
	SortOrder   int        `json:"sort_order" db:"sort_order"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty" db:"archived_at"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func validateSubject(title, desc, color string) error {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return ErrSubjectTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return ErrSubjectTitleTooLong
	}

	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return ErrSubjectDescTooLong
	}

	if color != "" && !colorRegex.MatchString(color) {
		return ErrInvalidColor
	}

	return nil
}

func NewSubject(userID, title string) (*Subject, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if err := validateSubject(title, "", ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Subject{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Color:     DefaultColor,
		Icon:      DefaultIcon,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Subject) Update(title, description, color, icon string) error {
	if s.ArchivedAt != nil {
		return ErrSubjectArchived
	}

	cleanDesc := strings.TrimSpace(description)
	if err := validateSubject(title, cleanDesc, color); err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}
	if color == "" {
		color = DefaultColor
	}

	s.Title = strings.TrimSpace(title)
	s.Description = cleanDesc
	s.Color = color
	s.Icon = icon
	s.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *Subject) ChangePosition(newOrder int) error {
	if s.ArchivedAt != nil {
		return ErrSubjectArchived
	}
	if newOrder < 0 {
		return ErrInvalidPosition
	}

	s.SortOrder = newOrder
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Subject) Archive() {
	if s.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	s.ArchivedAt = &now
	s.UpdatedAt = now
}

func (s *Subject) Restore() {
	if s.ArchivedAt == nil {
		return
	}
	s.ArchivedAt = nil
	s.UpdatedAt = time.Now().UTC()
}

func (s *Subject) IsActive() bool {
	return s.ArchivedAt == nil && s.DeletedAt == nil
}
