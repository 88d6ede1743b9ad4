package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"shotwatch/internal/bootstrap"
	trackingdto "shotwatch/internal/modules/tracking/dto"
	"shotwatch/internal/platform/config"
	apperrors "shotwatch/internal/platform/errors"
	"shotwatch/internal/platform/logging"
	"shotwatch/internal/ui/theme"
)

const defaultConfigPath = "shotwatch.yaml"

var log = logging.MustGetLogger("shotwatch")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "shotwatch",
		Short:         "Session notifications and timelapses from ScreenshotMonitor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "YAML config file")

	root.AddCommand(newPollCmd(&configPath))
	root.AddCommand(newWatchCmd(&configPath))
	root.AddCommand(newStatusCmd(&configPath))
	root.AddCommand(newReportCmd(&configPath))
	root.AddCommand(newHistoryCmd(&configPath))
	root.AddCommand(newGroupsCmd(&configPath))
	root.AddCommand(newTUICmd(&configPath))
	return root
}

// loadApp reads config and wires the app. The default config file may be
// absent when everything comes from the environment; an explicit one may not.
func loadApp(cmd *cobra.Command, configPath string) (*bootstrap.App, error) {
	required := cmd.Flags().Changed("config")
	cfg, err := config.Load(configPath, required)
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.LogLevel, os.Stderr); err != nil {
		return nil, fmt.Errorf("%w: log_level %q", apperrors.ErrInvalidInput, cfg.LogLevel)
	}
	return bootstrap.New(cfg)
}

func newPollCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run one detection cycle and send due notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			out, err := app.PollNow(cmd.Context())
			if err != nil {
				return err
			}
			printPoll(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newWatchCmd(configPath *string) *cobra.Command {
	var interval time.Duration

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Poll on an interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if interval <= 0 {
				interval = app.PollInterval
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Infof("watching every %s (sink=%s encoder=%s)", interval, app.SinkKind, app.EncoderName)
			return runWatch(ctx, interval, func(ctx context.Context) error {
				out, err := app.PollNow(ctx)
				if err != nil {
					return err
				}
				printPoll(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	watch.Flags().DurationVar(&interval, "interval", 0, "poll interval (defaults to poll_interval)")
	return watch
}

// runWatch runs cycle immediately and then on every tick. A failed cycle is
// logged and retried on the next tick; cancellation ends the loop cleanly.
func runWatch(ctx context.Context, interval time.Duration, cycle func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Errorf("poll cycle failed: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Notice("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracked sessions and their notification phase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			sessions, err := app.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), sessions, app.SubjectNames())
			return nil
		},
	}
}

func newReportCmd(configPath *string) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Periodic summaries"}

	var day string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Send the daily summary for each subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			var target time.Time
			if strings.TrimSpace(day) != "" {
				target, err = app.ParseDay(day)
				if err != nil {
					return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
				}
			}
			out, err := app.DailyFor(cmd.Context(), target)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "daily report %s\n", out.Day)
			for _, r := range out.Reports {
				if r.Skipped {
					_, _ = fmt.Fprintf(w, "  %s: skipped (%s)\n", r.SubjectName, r.Reason)
					continue
				}
				_, _ = fmt.Fprintf(w, "  %s: %.2fh over %d sessions, %d frames, sent as %s", r.SubjectName, float64(r.TotalSeconds)/3600, r.Sessions, r.Frames, r.Channel)
				if r.JournalPath != "" {
					_, _ = fmt.Fprintf(w, ", journal=%s", r.JournalPath)
				}
				_, _ = fmt.Fprintln(w)
			}
			return nil
		},
	}
	daily.Flags().StringVar(&day, "day", "", "day to report as YYYY-MM-DD (default yesterday)")

	report.AddCommand(daily)
	return report
}

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int

	history := &cobra.Command{
		Use:   "history",
		Short: "List recent deliveries from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(items) == 0 {
				_, _ = fmt.Fprintln(w, "no deliveries")
				return nil
			}
			for _, d := range items {
				session := d.SessionID
				if session == "" {
					session = "-"
				}
				_, _ = fmt.Fprintf(w, "%s  %-5s %-5s %-20s %s\n", app.Zone.Stamp(d.SentAt), d.Kind, d.Channel, d.SubjectName, session)
			}
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "number of deliveries to show")
	return history
}

func newGroupsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List WhatsApp groups reachable by the configured number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			groups, err := app.NotifyCLI.Groups(cmd.Context())
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("groups listing needs sink.kind=whatsapp (current: %s)", app.SinkKind)
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(groups) == 0 {
				_, _ = fmt.Fprintln(w, "no groups")
				return nil
			}
			for _, g := range groups {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", g.ID, g.Name)
			}
			return nil
		},
	}
}

func newTUICmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the shotwatch dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

// ─── output ──────────────────────────────────────────────────────────────────

func printPoll(w io.Writer, out trackingdto.PollOutput) {
	for _, t := range out.Started {
		_, _ = fmt.Fprintf(w, "started  %s  %s\n", t.SubjectName, t.SessionID)
	}
	for _, t := range out.Ended {
		_, _ = fmt.Fprintf(w, "ended    %s  %s  (%s)\n", t.SubjectName, t.SessionID, t.Channel)
	}
	for _, id := range out.DeferredEnds {
		_, _ = fmt.Fprintf(w, "deferred %s\n", id)
	}
	for _, id := range out.SkippedSubjects {
		_, _ = fmt.Fprintf(w, "skipped  %s\n", id)
	}
	_, _ = fmt.Fprintf(w, "tracked %d sessions\n", out.Tracked)
}

func printStatus(w io.Writer, sessions []trackingdto.SessionStatusOutput, names map[string]string) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, theme.Muted.Render("no sessions tracked"))
		return
	}
	bySubject := map[string][]trackingdto.SessionStatusOutput{}
	var subjects []string
	for _, s := range sessions {
		if _, ok := bySubject[s.SubjectID]; !ok {
			subjects = append(subjects, s.SubjectID)
		}
		bySubject[s.SubjectID] = append(bySubject[s.SubjectID], s)
	}
	sort.Strings(subjects)

	cell := lipgloss.NewStyle().Width(10)
	for _, subject := range subjects {
		name := names[subject]
		if name == "" {
			name = subject
		}
		_, _ = fmt.Fprintln(w, theme.Title.Render(name)+theme.Muted.Render(" ("+subject+")"))
		for _, s := range bySubject[subject] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", cell.Render(theme.Phase(s.Phase).Render(s.Phase)), s.SessionID)
		}
	}
}
