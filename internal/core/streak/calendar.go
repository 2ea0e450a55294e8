package streak

import (
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type DayStatus string

const (
	StatusBeforeHistory DayStatus = "before-history"
	StatusStudied       DayStatus = "studied"
	StatusRest          DayStatus = "rest"
	StatusTodayPending  DayStatus = "today-pending"
	StatusMissed        DayStatus = "missed"
)

// Classify labels one calendar day for the strip and month views.
func Classify(day domain.Day, daily DailyMinutes, restDays domain.RestDays, earliest, today domain.Day) DayStatus {
	if day < earliest {
		return StatusBeforeHistory
	}
	switch judge(daily[day], day.Weekday(), restDays) {
	case studied:
		return StatusStudied
	case rest:
		return StatusRest
	}
	if day == today {
		return StatusTodayPending
	}
	return StatusMissed
}

// Range classifies every day in [from, to]. With no recorded history every
// day is before-history.
func Range(daily DailyMinutes, restDays domain.RestDays, from, to, today domain.Day) []domain.DayCell {
	earliest, _, ok := daily.Span()
	if !ok {
		earliest = to + 1
	}

	cells := make([]domain.DayCell, 0, int(to-from)+1)
	for d := from; d <= to; d++ {
		cells = append(cells, domain.DayCell{
			Day:     d,
			Weekday: int(d.Weekday()),
			Minutes: daily[d],
			Status:  string(Classify(d, daily, restDays, earliest, today)),
		})
	}
	return cells
}

// Strip returns the last n days up to and including today, oldest first.
func Strip(daily DailyMinutes, restDays domain.RestDays, today domain.Day, n int) []domain.DayCell {
	if n < 1 {
		return []domain.DayCell{}
	}
	return Range(daily, restDays, today.AddDays(-(n - 1)), today, today)
}

// Month returns one cell per day of the given month.
func Month(daily DailyMinutes, restDays domain.RestDays, today domain.Day, year int, month time.Month) []domain.DayCell {
	first := domain.DateDay(year, month, 1)
	last := domain.DayOf(first.Time().AddDate(0, 1, -1))
	return Range(daily, restDays, first, last, today)
}

// FormatDays renders a day count for display, e.g. "1 day" or "12 days".
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
