// Command streakctl inspects an exported study snapshot offline: the current
// streak, the recent day strip and a month calendar.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	file   string
	output string
	today  string
	rest   []int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "streakctl",
		Short:         "Inspect a study snapshot offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "snapshot file (.json, .yaml or .yml)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	root.PersistentFlags().StringVar(&opts.today, "today", "", "evaluate as of this day (YYYY-MM-DD) instead of now")
	root.PersistentFlags().IntSliceVar(&opts.rest, "rest", nil, "override rest weekdays, 0=Sunday ... 6=Saturday")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(newSummaryCmd(opts))
	root.AddCommand(newStripCmd(opts))
	root.AddCommand(newCalendarCmd(opts))
	return root
}

// session bundles what every subcommand needs after flag parsing.
type session struct {
	engine *services.StreakService
	format outputFormat
	now    time.Time
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	format, err := parseFormat(o.output)
	if err != nil {
		return nil, err
	}

	snap, err := readSnapshot(o.file)
	if err != nil {
		return nil, err
	}

	var rest []int
	if cmd.Flags().Changed("rest") {
		rest = o.rest
		if rest == nil {
			rest = []int{}
		}
	}

	engine, loc, err := loadEngine(cmd.Context(), snap, rest)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(loc)
	if o.today != "" {
		day, err := domain.ParseDay(o.today)
		if err != nil {
			return nil, fmt.Errorf("invalid --today: %w", err)
		}
		now = day.In(loc).Add(12 * time.Hour)
	}

	return &session{engine: engine, format: format, now: now}, nil
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the current and best streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			summary, err := s.engine.Summary(cmd.Context(), localUser, s.now)
			if err != nil {
				return err
			}

			if s.format == formatText {
				return renderSummary(cmd.OutOrStdout(), summary)
			}
			return encode(cmd.OutOrStdout(), s.format, summary)
		},
	}
}

func newStripCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "strip",
		Short: "Show the last days up to today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			cells, err := s.engine.Strip(cmd.Context(), localUser, days, s.now)
			if errors.Is(err, domain.ErrInvalidRange) {
				return fmt.Errorf("--days must be between 1 and %d", services.MaxStripDays)
			}
			if err != nil {
				return err
			}

			if s.format == formatText {
				return renderStrip(cmd.OutOrStdout(), cells)
			}
			return encode(cmd.OutOrStdout(), s.format, cells)
		},
	}
	cmd.Flags().IntVar(&days, "days", services.DefaultStripDays, "number of days to show")
	return cmd
}

func newCalendarCmd(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show one month, the current one by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			var (
				year int
				mon  time.Month
			)
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q, expected YYYY-MM", month)
				}
				year, mon = parsed.Year(), parsed.Month()
			}

			cal, err := s.engine.Calendar(cmd.Context(), localUser, year, mon, s.now)
			if err != nil {
				return err
			}

			if s.format == formatText {
				return renderCalendar(cmd.OutOrStdout(), cal.Year, cal.Month, cal.Days)
			}
			return encode(cmd.OutOrStdout(), s.format, map[string]any{
				"month": cal.Label(),
				"days":  cal.Days,
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show (YYYY-MM)")
	return cmd
}
