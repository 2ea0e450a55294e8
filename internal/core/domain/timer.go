package domain

import (
	"errors"
	"time"
)

var (
	ErrTimerNotFound       = errors.New("no active timer")
	ErrTimerAlreadyRunning = errors.New("a timer is already active")
	ErrTimerNotRunning     = errors.New("timer is not running")
	ErrTimerNotPaused      = errors.New("timer is not paused")
)

const (
	TimerRunning = "running"
	TimerPaused  = "paused"
)

// Timer is the in-progress session of a user. Progress is kept as the time
// accumulated across previous runs plus the current run, if any.
type Timer struct {
	UserID             string     `json:"user_id"`
	SubjectID          string     `json:"subject_id,omitempty"`
	Category           string     `json:"category,omitempty"`
	State              string     `json:"state"`
	StartedAt          time.Time  `json:"started_at"`
	AccumulatedSeconds int        `json:"accumulated_seconds"`
	RunningSince       *time.Time `json:"running_since,omitempty"`
}

func NewTimer(userID, subjectID, category string, now time.Time) *Timer {
	now = now.UTC()
	return &Timer{
		UserID:       userID,
		SubjectID:    subjectID,
		Category:     category,
		State:        TimerRunning,
		StartedAt:    now,
		RunningSince: &now,
	}
}

func (t *Timer) Pause(now time.Time) error {
	if t.State != TimerRunning || t.RunningSince == nil {
		return ErrTimerNotRunning
	}
	t.AccumulatedSeconds = t.Elapsed(now)
	t.RunningSince = nil
	t.State = TimerPaused
	return nil
}

func (t *Timer) Resume(now time.Time) error {
	if t.State != TimerPaused {
		return ErrTimerNotPaused
	}
	now = now.UTC()
	t.RunningSince = &now
	t.State = TimerRunning
	return nil
}

// Elapsed returns the total running time in whole seconds.
func (t *Timer) Elapsed(now time.Time) int {
	total := t.AccumulatedSeconds
	if t.State == TimerRunning && t.RunningSince != nil {
		if run := now.Sub(*t.RunningSince); run > 0 {
			total += int(run / time.Second)
		}
	}
	return total
}
