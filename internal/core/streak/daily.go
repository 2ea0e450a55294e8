package streak

import (
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

// DailyMinutes maps each day with at least one contributing entry to the
// minutes studied that day. Absent days read as zero.
type DailyMinutes map[domain.Day]float64

// BuildDailyMinutes sums study sessions and exams per calendar day.
// Session days are taken in loc (nil means UTC); exams carry a plain date.
// Exams without a date or a parseable duration are skipped.
func BuildDailyMinutes(sessions []*domain.StudySession, exams []*domain.Exam, loc *time.Location) DailyMinutes {
	daily := make(DailyMinutes)

	for _, s := range sessions {
		if s == nil {
			continue
		}
		daily[domain.DayOfIn(s.OccurredAt, loc)] += s.DurationMinutes()
	}

	for _, e := range exams {
		if e == nil {
			continue
		}
		day, ok := e.Day()
		if !ok {
			continue
		}
		minutes, ok := e.Minutes()
		if !ok {
			continue
		}
		daily[day] += minutes
	}

	return daily
}

func (m DailyMinutes) Minutes(d domain.Day) float64 {
	return m[d]
}

// Span returns the earliest and latest recorded days.
func (m DailyMinutes) Span() (first, last domain.Day, ok bool) {
	for d := range m {
		if !ok {
			first, last, ok = d, d, true
			continue
		}
		if d < first {
			first = d
		}
		if d > last {
			last = d
		}
	}
	return first, last, ok
}

// StudiedDays counts the days that reach the threshold.
func (m DailyMinutes) StudiedDays() int {
	n := 0
	for _, minutes := range m {
		if minutes >= ThresholdMinutes {
			n++
		}
	}
	return n
}

func (m DailyMinutes) Total() float64 {
	var total float64
	for _, minutes := range m {
		total += minutes
	}
	return total
}
