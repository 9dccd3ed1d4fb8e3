package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/codequest-labs/ai-tutorial-progress/internal/app"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
)

func newStatusCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show a progress summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(_ context.Context, a *app.App) (interface{}, error) {
				return a.Controller().Summary(), nil
			})
		},
	}
}

func newLoginCmd(r *runner) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Record today's login and update the streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := time.Now()
			if date != "" {
				parsed, err := time.ParseInLocation(progress.DateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
				}
				today = parsed
			}
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().UpdateLoginStreak(ctx, today), nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "login day as YYYY-MM-DD (default today)")
	return cmd
}

func newCompleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <lesson-id>",
		Short: "Mark a lesson completed without a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().MarkLessonCompleted(ctx, args[0])
			})
		},
	}
}

func newSubmitCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <lesson-id> <file|->",
		Short: "Check a solution and complete the lesson when it passes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().SubmitLesson(ctx, args[0], string(source))
			})
		},
	}
}

func newOpenCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "open <lesson-id>",
		Short: "Set the lesson currently being viewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().SetCurrentLesson(ctx, args[0])
			})
		},
	}
}

func newCreditCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "credit <amount>",
		Short: "Add coins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().CreditCoins(ctx, amount)
			})
		},
	}
}

func newDebitCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "debit <amount>",
		Short: "Spend coins; the balance stops at zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().DebitCoins(ctx, amount)
			})
		},
	}
}

func newRewardsCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "rewards",
		Short: "Unlock any achievements whose conditions are already met",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().RunRewardPass(ctx), nil
			})
		},
	}
}

func newResetCmd(r *runner) *cobra.Command {
	var keepUsername bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().ResetProgress(ctx, keepUsername), nil
			})
		},
	}
	cmd.Flags().BoolVar(&keepUsername, "keep-username", false, "keep the current display name")
	return cmd
}

func newUsernameCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "username <name>",
		Short: "Change the display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().SetUsername(ctx, args[0])
			})
		},
	}
}

func newPrefsCmd(r *runner) *cobra.Command {
	var theme string
	var sound, analytics bool
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change UI preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				prefs := a.Controller().GetState().Preferences
				flags := cmd.Flags()
				if !flags.Changed("theme") && !flags.Changed("sound") && !flags.Changed("analytics") {
					return prefs, nil
				}
				if flags.Changed("theme") {
					prefs.Theme = theme
				}
				if flags.Changed("sound") {
					prefs.SoundEffects = sound
				}
				if flags.Changed("analytics") {
					prefs.AnalyticsConsent = analytics
				}
				return a.Controller().SetPreferences(ctx, prefs)
			})
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "light or dark")
	cmd.Flags().BoolVar(&sound, "sound", false, "enable sound effects")
	cmd.Flags().BoolVar(&analytics, "analytics", false, "consent to analytics")
	return cmd
}

func newLessonsCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List lessons with their lock and completion status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(_ context.Context, a *app.App) (interface{}, error) {
				return a.Controller().Lessons(), nil
			})
		},
	}
}

func newAchievementsCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which are unlocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(_ context.Context, a *app.App) (interface{}, error) {
				return a.Controller().Achievements(), nil
			})
		},
	}
}

func newActivityCmd(r *runner) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recently completed lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(_ context.Context, a *app.App) (interface{}, error) {
				return a.Controller().RecentActivity(limit), nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum entries, 0 for all")
	return cmd
}

func newExportCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the progress record as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(_ context.Context, a *app.App) (interface{}, error) {
				data, err := a.Controller().Export()
				if err != nil {
					return nil, err
				}
				if len(args) == 0 || args[0] == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return nil, err
				}
				if err := os.WriteFile(args[0], data, 0o644); err != nil {
					return nil, fmt.Errorf("failed to write %s: %w", args[0], err)
				}
				return nil, nil
			})
		},
	}
}

func newImportCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the progress record with an exported one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Controller().Import(ctx, data)
			})
		},
	}
}

func newServeCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Record a login and serve metrics until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				return nil, a.Serve(ctx)
			})
		},
	}
}

func parseAmount(raw string) (int, error) {
	amount, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
