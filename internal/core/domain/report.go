package domain

import "time"

type Report struct {
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	TotalMinutes   float64         `json:"total_minutes"`
	StudiedDays    int             `json:"studied_days"`
	TotalSessions  int             `json:"total_sessions"`
	TotalExams     int             `json:"total_exams"`
	DailyMinutes   []float64       `json:"daily_minutes"`
	SubjectReports []SubjectReport `json:"subjects"`
}

type SubjectReport struct {
	SubjectID        string    `json:"subject_id"`
	SubjectTitle     string    `json:"subject_title"`
	Color            string    `json:"color"`
	Icon             string    `json:"icon"`
	TotalMinutes     float64   `json:"total_minutes"`
	Sessions         int       `json:"sessions"`
	QuestionsTotal   int       `json:"questions_total"`
	QuestionsCorrect int       `json:"questions_correct"`
	Accuracy         float64   `json:"accuracy"`
	DailyMinutes     []float64 `json:"daily_minutes"`
}

type ReportInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// StreakSummary is what the home screen shows.
type StreakSummary struct {
	Current      int      `json:"current_streak"`
	Best         int      `json:"best_streak"`
	CurrentLabel string   `json:"current_label"`
	BestLabel    string   `json:"best_label"`
	Today        Day      `json:"today"`
	StudiedToday bool     `json:"studied_today"`
	TodayMinutes float64  `json:"today_minutes"`
	RestDays     RestDays `json:"rest_days"`
}

// DayCell is a classified calendar day.
type DayCell struct {
	Day     Day     `json:"day"`
	Weekday int     `json:"weekday"`
	Minutes float64 `json:"minutes"`
	Status  string  `json:"status"`
}
