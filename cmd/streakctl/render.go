package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/streak"
)

var (
	green    = lipgloss.Color("#a6e3a1")
	lavender = lipgloss.Color("#b4befe")
	peach    = lipgloss.Color("#fab387")
	red      = lipgloss.Color("#f38ba8")
	surface  = lipgloss.Color("#585b70")

	titleStyle = lipgloss.NewStyle().Foreground(lavender).Bold(true)
	labelStyle = lipgloss.NewStyle().Width(16)
	mutedStyle = lipgloss.NewStyle().Foreground(surface)

	statusStyles = map[string]lipgloss.Style{
		string(streak.StatusStudied):       lipgloss.NewStyle().Foreground(green).Bold(true),
		string(streak.StatusRest):          lipgloss.NewStyle().Foreground(lavender),
		string(streak.StatusTodayPending):  lipgloss.NewStyle().Foreground(peach).Bold(true),
		string(streak.StatusMissed):        lipgloss.NewStyle().Foreground(red),
		string(streak.StatusBeforeHistory): mutedStyle,
	}

	statusGlyphs = map[string]string{
		string(streak.StatusStudied):       "■",
		string(streak.StatusRest):          "◆",
		string(streak.StatusTodayPending):  "□",
		string(streak.StatusMissed):        "×",
		string(streak.StatusBeforeHistory): "·",
	}
)

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (use text, json or yaml)", s)
}

// encode writes v as JSON or YAML. YAML keys follow the JSON field names.
func encode(w io.Writer, format outputFormat, v any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func styleFor(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func restDayNames(rest domain.RestDays) string {
	if len(rest) == 0 {
		return "none"
	}
	names := make([]string, 0, len(rest))
	for _, d := range rest {
		names = append(names, weekdayNames[d])
	}
	return strings.Join(names, ", ")
}

func renderSummary(w io.Writer, s *domain.StreakSummary) error {
	today := fmt.Sprintf("%s  %.0f min", s.Today, s.TodayMinutes)
	if s.StudiedToday {
		today += "  " + styleFor(string(streak.StatusStudied)).Render("studied")
	} else {
		today += "  " + styleFor(string(streak.StatusTodayPending)).Render("pending")
	}

	rows := [][2]string{
		{"Current streak", s.CurrentLabel},
		{"Best streak", s.BestLabel},
		{"Today", today},
		{"Rest days", restDayNames(s.RestDays)},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Study streak") + "\n")
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row[0]) + row[1] + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderStrip(w io.Writer, cells []domain.DayCell) error {
	var glyphs, days []string
	for _, c := range cells {
		glyphs = append(glyphs, styleFor(c.Status).Render(statusGlyphs[c.Status]))
		days = append(days, mutedStyle.Render(weekdayNames[c.Weekday][:1]))
	}

	var b strings.Builder
	if len(cells) > 0 {
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s → %s", cells[0].Day, cells[len(cells)-1].Day)) + "\n")
	}
	b.WriteString(strings.Join(glyphs, " ") + "\n")
	b.WriteString(strings.Join(days, " ") + "\n")
	b.WriteString(legend() + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func renderCalendar(w io.Writer, year int, month time.Month, cells []domain.DayCell) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", month, year)) + "\n")

	header := make([]string, len(weekdayNames))
	for i, name := range weekdayNames {
		header[i] = mutedStyle.Render(name[:2])
	}
	b.WriteString(strings.Join(header, " ") + "\n")

	if len(cells) > 0 {
		b.WriteString(strings.Repeat("   ", cells[0].Weekday))
	}
	for _, c := range cells {
		b.WriteString(styleFor(c.Status).Render(fmt.Sprintf("%2d", c.Day.Time().Day())))
		if c.Weekday == int(time.Saturday) {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	if len(cells) > 0 && cells[len(cells)-1].Weekday != int(time.Saturday) {
		b.WriteString("\n")
	}
	b.WriteString(legend() + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func legend() string {
	order := []streak.DayStatus{
		streak.StatusStudied,
		streak.StatusRest,
		streak.StatusTodayPending,
		streak.StatusMissed,
		streak.StatusBeforeHistory,
	}
	parts := make([]string, 0, len(order))
	for _, st := range order {
		parts = append(parts, styleFor(string(st)).Render(statusGlyphs[string(st)])+" "+string(st))
	}
	return mutedStyle.Render("legend: ") + strings.Join(parts, "  ")
}
