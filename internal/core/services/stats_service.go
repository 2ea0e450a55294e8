package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/streak"
)

const MaxReportDays = 366

type StatsService struct {
	subjectRepo  domain.SubjectRepository
	sessionRepo  domain.SessionRepository
	examRepo     domain.ExamRepository
	settingsRepo domain.SettingsRepository
}

func NewStatsService(subjectRepo domain.SubjectRepository, sessionRepo domain.SessionRepository, examRepo domain.ExamRepository, settingsRepo domain.SettingsRepository) *StatsService {
	return &StatsService{
		subjectRepo:  subjectRepo,
		sessionRepo:  sessionRepo,
		examRepo:     examRepo,
		settingsRepo: settingsRepo,
	}
}

func accuracy(total, correct int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// GetReport aggregates study time over [StartDate, EndDate], both inclusive,
// taken as calendar days in the user's timezone.
func (s *StatsService) GetReport(ctx context.Context, input domain.ReportInput) (*domain.Report, error) {
	start := domain.DayOf(input.StartDate)
	end := domain.DayOf(input.EndDate)
	if end < start {
		return nil, domain.ErrInvalidRange
	}
	days := int(end-start) + 1
	if days > MaxReportDays {
		return nil, fmt.Errorf("%w: %d days (max %d)", domain.ErrRangeTooLarge, days, MaxReportDays)
	}

	settings, err := loadSettings(ctx, s.settingsRepo, input.UserID)
	if err != nil {
		return nil, err
	}
	loc := settings.Location()

	subjects, err := s.subjectRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListByUserIDAndDateRange(ctx, input.UserID, start.In(loc), end.AddDays(1).In(loc))
	if err != nil {
		return nil, err
	}

	allExams, err := s.examRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	exams := make([]*domain.Exam, 0, len(allExams))
	for _, e := range allExams {
		if d, ok := e.Day(); ok && d >= start && d <= end {
			exams = append(exams, e)
		}
	}

	daily := streak.BuildDailyMinutes(sessions, exams, loc)

	report := &domain.Report{
		StartDate:      start.String(),
		EndDate:        end.String(),
		TotalSessions:  len(sessions),
		TotalExams:     len(exams),
		DailyMinutes:   make([]float64, 0, days),
		SubjectReports: make([]domain.SubjectReport, 0, len(subjects)),
	}
	for d := start; d <= end; d++ {
		m := daily.Minutes(d)
		report.DailyMinutes = append(report.DailyMinutes, m)
		report.TotalMinutes += m
		if m >= streak.ThresholdMinutes {
			report.StudiedDays++
		}
	}

	bySubject := make(map[string][]*domain.StudySession)
	for _, sess := range sessions {
		bySubject[sess.SubjectID] = append(bySubject[sess.SubjectID], sess)
	}

	for _, subj := range subjects {
		report.SubjectReports = append(report.SubjectReports, subjectReport(subj, bySubject[subj.ID], start, end, loc))
	}

	return report, nil
}

func subjectReport(subj *domain.Subject, sessions []*domain.StudySession, start, end domain.Day, loc *time.Location) domain.SubjectReport {
	r := domain.SubjectReport{
		SubjectID:    subj.ID,
		SubjectTitle: subj.Title,
		Color:        subj.Color,
		Icon:         subj.Icon,
		Sessions:     len(sessions),
		DailyMinutes: make([]float64, 0, int(end-start)+1),
	}

	for _, sess := range sessions {
		r.QuestionsTotal += sess.QuestionsTotal
		r.QuestionsCorrect += sess.QuestionsCorrect
	}
	r.Accuracy = accuracy(r.QuestionsTotal, r.QuestionsCorrect)

	daily := streak.BuildDailyMinutes(sessions, nil, loc)
	for d := start; d <= end; d++ {
		m := daily.Minutes(d)
		r.DailyMinutes = append(r.DailyMinutes, m)
		r.TotalMinutes += m
	}
	return r
}
