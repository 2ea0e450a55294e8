// Package achievements holds the badge catalog and the predicates that unlock
// each badge from a user's history.
package achievements

import (
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/streak"
)

// History is everything a predicate may look at.
type History struct {
	Sessions      []*domain.StudySession
	Exams         []*domain.Exam
	Daily         streak.DailyMinutes
	CurrentStreak int
	BestStreak    int
	Location      *time.Location
}

type rule struct {
	domain.Achievement
	met func(h *History) bool
}

var catalog = []rule{
	{
		Achievement: domain.Achievement{Code: "first_session", Title: "First Step", Description: "Log your first study session", Icon: "footprints"},
		met:         func(h *History) bool { return len(h.Sessions) >= 1 },
	},
	{
		Achievement: domain.Achievement{Code: "sessions_10", Title: "Getting Serious", Description: "Log 10 study sessions", Icon: "stack"},
		met:         func(h *History) bool { return len(h.Sessions) >= 10 },
	},
	{
		Achievement: domain.Achievement{Code: "sessions_100", Title: "Centurion", Description: "Log 100 study sessions", Icon: "shield"},
		met:         func(h *History) bool { return len(h.Sessions) >= 100 },
	},
	{
		Achievement: domain.Achievement{Code: "hours_10", Title: "Ten Hours", Description: "Study for 10 hours in total", Icon: "hourglass"},
		met:         func(h *History) bool { return h.Daily.Total() >= 10*60 },
	},
	{
		Achievement: domain.Achievement{Code: "hours_100", Title: "Hundred Hours", Description: "Study for 100 hours in total", Icon: "clock"},
		met:         func(h *History) bool { return h.Daily.Total() >= 100*60 },
	},
	{
		Achievement: domain.Achievement{Code: "streak_7", Title: "One Week", Description: "Reach a 7 day streak", Icon: "flame"},
		met:         func(h *History) bool { return h.CurrentStreak >= 7 },
	},
	{
		Achievement: domain.Achievement{Code: "streak_30", Title: "One Month", Description: "Reach a 30 day streak", Icon: "fire"},
		met:         func(h *History) bool { return h.CurrentStreak >= 30 },
	},
	{
		Achievement: domain.Achievement{Code: "streak_100", Title: "Unstoppable", Description: "Reach a 100 day streak", Icon: "volcano"},
		met:         func(h *History) bool { return h.CurrentStreak >= 100 },
	},
	{
		Achievement: domain.Achievement{Code: "marathon", Title: "Marathon", Description: "Study 4 hours in a single day", Icon: "runner"},
		met:         marathon,
	},
	{
		Achievement: domain.Achievement{Code: "first_exam", Title: "Test Drive", Description: "Complete your first practice exam", Icon: "clipboard"},
		met:         func(h *History) bool { return len(h.Exams) >= 1 },
	},
	{
		Achievement: domain.Achievement{Code: "exams_10", Title: "Exam Veteran", Description: "Complete 10 practice exams", Icon: "medal"},
		met:         func(h *History) bool { return len(h.Exams) >= 10 },
	},
	{
		Achievement: domain.Achievement{Code: "questions_1000", Title: "Question Machine", Description: "Answer 1000 questions", Icon: "question"},
		met: func(h *History) bool {
			total, _ := questions(h)
			return total >= 1000
		},
	},
	{
		Achievement: domain.Achievement{Code: "sharpshooter", Title: "Sharpshooter", Description: "Keep 90% accuracy over at least 100 questions", Icon: "target"},
		met: func(h *History) bool {
			total, correct := questions(h)
			return total >= 100 && float64(correct)/float64(total) >= 0.9
		},
	},
	{
		Achievement: domain.Achievement{Code: "early_bird", Title: "Early Bird", Description: "Start a session between 5 and 7 in the morning", Icon: "sunrise"},
		met:         func(h *History) bool { return startedBetween(h, 5, 7) },
	},
	{
		Achievement: domain.Achievement{Code: "night_owl", Title: "Night Owl", Description: "Start a session between midnight and 4", Icon: "moon"},
		met:         func(h *History) bool { return startedBetween(h, 0, 4) },
	},
}

// Catalog lists every achievement in display order.
func Catalog() []domain.Achievement {
	out := make([]domain.Achievement, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r.Achievement)
	}
	return out
}

// Lookup finds a catalog entry by code.
func Lookup(code string) (domain.Achievement, bool) {
	for _, r := range catalog {
		if r.Code == code {
			return r.Achievement, true
		}
	}
	return domain.Achievement{}, false
}

// Evaluate returns the codes of every achievement the history satisfies.
func Evaluate(h History) []string {
	if h.Daily == nil {
		h.Daily = streak.BuildDailyMinutes(h.Sessions, h.Exams, h.Location)
	}

	var codes []string
	for _, r := range catalog {
		if r.met(&h) {
			codes = append(codes, r.Code)
		}
	}
	return codes
}

func marathon(h *History) bool {
	for _, minutes := range h.Daily {
		if minutes >= 240 {
			return true
		}
	}
	return false
}

func questions(h *History) (total, correct int) {
	for _, s := range h.Sessions {
		total += s.QuestionsTotal
		correct += s.QuestionsCorrect
	}
	for _, e := range h.Exams {
		total += e.QuestionsTotal
		correct += e.QuestionsCorrect
	}
	return total, correct
}

// startedBetween reports whether any session started in [from, to) local hours.
func startedBetween(h *History, from, to int) bool {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, s := range h.Sessions {
		hour := s.OccurredAt.In(loc).Hour()
		if hour >= from && hour < to {
			return true
		}
	}
	return false
}
