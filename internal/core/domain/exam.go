package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamConflict      = errors.New("exam version conflict")
	ErrExamTitleEmpty    = errors.New("exam title cannot be empty")
	ErrExamTitleTooLong  = errors.New("exam title is too long (max 100 chars)")
	ErrExamDateRequired  = errors.New("exam_date is required")
	ErrInvalidElapsed    = errors.New("invalid elapsed duration (must be HH:MM:SS)")
	ErrExamNotesTooLong  = errors.New("notes are too long (max 5000 chars)")
	ErrExamTooManyRights = errors.New("correct answers cannot exceed questions answered")
)

// Exam is one completed practice exam. It feeds the same daily totals as
// study sessions but is stored on its own.
type Exam struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Title  string `json:"title" db:"title"`

	// ExamDate carries a calendar date only; its time of day is ignored.
	ExamDate         *time.Time `json:"exam_date,omitempty" db:"exam_date"`
	ElapsedDuration  string     `json:"elapsed_duration" db:"elapsed_duration"`
	QuestionsTotal   int        `json:"questions_total" db:"questions_total"`
	QuestionsCorrect int        `json:"questions_correct" db:"questions_correct"`
	Notes            string     `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewExam(userID, title string, day Day, elapsed string) *Exam {
	now := time.Now().UTC()
	date := day.Time()

	return &Exam{
		UserID:          userID,
		Title:           strings.TrimSpace(title),
		ExamDate:        &date,
		ElapsedDuration: strings.TrimSpace(elapsed),

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ParseElapsed converts an HH:MM:SS duration into seconds. Hours may exceed 23.
func ParseElapsed(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, ErrInvalidElapsed
	}

	var values [3]int
	for i, p := range parts {
		if p == "" {
			return 0, ErrInvalidElapsed
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, ErrInvalidElapsed
		}
		values[i] = v
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, ErrInvalidElapsed
	}

	return values[0]*3600 + values[1]*60 + values[2], nil
}

// FormatElapsed renders seconds as HH:MM:SS.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := seconds % 60
	return pad2(h) + ":" + pad2(m) + ":" + pad2(sec)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// Day reports the calendar date of the exam. ok is false when no date was recorded.
func (e *Exam) Day() (Day, bool) {
	if e.ExamDate == nil || e.ExamDate.IsZero() {
		return 0, false
	}
	return DayOf(*e.ExamDate), true
}

// Minutes reports the elapsed time in minutes. ok is false for a missing or
// unparseable duration.
func (e *Exam) Minutes() (float64, bool) {
	if strings.TrimSpace(e.ElapsedDuration) == "" {
		return 0, false
	}
	secs, err := ParseElapsed(e.ElapsedDuration)
	if err != nil {
		return 0, false
	}
	return float64(secs) / 60, true
}

func (e *Exam) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrInvalidUserID
	}
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return ErrExamTitleEmpty
	}
	if len(title) > MaxTitleLen {
		return ErrExamTitleTooLong
	}
	if _, ok := e.Day(); !ok {
		return ErrExamDateRequired
	}
	if _, err := ParseElapsed(e.ElapsedDuration); err != nil {
		return err
	}
	if e.QuestionsTotal < 0 || e.QuestionsCorrect < 0 {
		return ErrInvalidQuestions
	}
	if e.QuestionsCorrect > e.QuestionsTotal {
		return ErrExamTooManyRights
	}
	if len(e.Notes) > MaxNotesLen {
		return ErrExamNotesTooLong
	}
	return nil
}
