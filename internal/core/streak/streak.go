// Package streak computes study streaks from daily activity totals.
//
// All functions are pure: they read the inputs, never mutate them and never
// fail. Callers recompute on every request.
package streak

import (
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

// ThresholdMinutes is the minimum activity for a day to count as studied.
const ThresholdMinutes = 20.0

type verdict int

const (
	miss verdict = iota
	studied
	rest
)

// judge is the single per-day rule shared by every walk.
func judge(minutes float64, weekday time.Weekday, restDays domain.RestDays) verdict {
	if minutes >= ThresholdMinutes {
		return studied
	}
	if restDays.Contains(weekday) {
		return rest
	}
	return miss
}

// Current returns the length of the streak ending today. Walking backward
// from today: studied days count, rest days and today itself are skipped,
// any other day ends the walk. Days before the first recorded day are never
// visited.
func Current(daily DailyMinutes, restDays domain.RestDays, today domain.Day) int {
	earliest, _, ok := daily.Span()
	if !ok {
		return 0
	}

	count := 0
	for d := today; d >= earliest; d-- {
		switch judge(daily[d], d.Weekday(), restDays) {
		case studied:
			count++
		case rest:
		default:
			if d != today {
				return count
			}
		}
	}
	return count
}

// Best returns the longest streak across the recorded history. Missing
// days read as zero minutes and the last day gets no grace.
func Best(daily DailyMinutes, restDays domain.RestDays) int {
	earliest, latest, ok := daily.Span()
	if !ok {
		return 0
	}

	best, current := 0, 0
	for d := earliest; d <= latest; d++ {
		switch judge(daily[d], d.Weekday(), restDays) {
		case studied:
			current++
			if current > best {
				best = current
			}
		case rest:
		default:
			current = 0
		}
	}
	return best
}
