// Package cli implements the tutorctl command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codequest-labs/ai-tutorial-progress/internal/app"
	"github.com/codequest-labs/ai-tutorial-progress/internal/config"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/notify"
)

// AppLoader builds the application a command runs against.
type AppLoader func(ctx context.Context) (*app.App, error)

// LoadFromEnv reads configuration from the environment and builds the App.
func LoadFromEnv(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app.SetupLogging(cfg)
	return app.New(ctx, cfg)
}

// Execute runs the root command with configuration from the environment.
func Execute(ctx context.Context) error {
	return NewRootCmd(LoadFromEnv).ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. load is called once per command.
func NewRootCmd(load AppLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "tutorctl",
		Short:         "Track progress, coins and achievements for the AI tutorial",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	r := &runner{load: load}
	root.AddCommand(
		newStatusCmd(r),
		newLoginCmd(r),
		newCompleteCmd(r),
		newSubmitCmd(r),
		newOpenCmd(r),
		newCreditCmd(r),
		newDebitCmd(r),
		newRewardsCmd(r),
		newResetCmd(r),
		newUsernameCmd(r),
		newPrefsCmd(r),
		newLessonsCmd(r),
		newAchievementsCmd(r),
		newActivityCmd(r),
		newExportCmd(r),
		newImportCmd(r),
		newServeCmd(r),
	)
	return root
}

// runner loads the App for a command and closes it afterwards.
type runner struct {
	load AppLoader
}

func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) (interface{}, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := r.load(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	out, err := fn(ctx, a)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), envelope{Result: out, Events: a.Events()})
}

type envelope struct {
	Result interface{}    `json:"result"`
	Events []notify.Event `json:"events,omitempty"`
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
