package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewEvaluateCommand 创建 evaluate 命令
func NewEvaluateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, day string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run title evaluation for a user",
		Long: `Run every title rule for a user as of a day and grant what is earned.

Grants are idempotent, so re-running for the same user and day is safe.
The title catalog must be seeded first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, rootOpts, name, day)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "user name")
	cmd.Flags().StringVar(&day, "day", "", "evaluation day, 2006-01-02 (defaults to today)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *RootOptions, name, day string) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openEnv(opts)
	if err != nil {
		return out.Fail(err)
	}
	defer e.Close()

	today, err := e.resolveDay(day)
	if err != nil {
		return out.Fail(err)
	}
	out.VerboseLog("evaluating %s on %s with rules %v", name, today, e.engine.Rules())

	result, err := e.engine.Evaluate(cmd.Context(), name, today)
	if err != nil {
		return out.Fail(err)
	}

	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s on %s: %d-day streak\n", result.User, result.Day, result.Streak)
		if len(result.Granted) == 0 {
			fmt.Fprintln(w, "No new titles")
			return
		}
		for _, g := range result.Granted {
			fmt.Fprintf(w, "✓ %s earned %s (%s)\n", g.User, g.Name, g.Code)
		}
	})
}
