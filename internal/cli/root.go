package cli

import (
	"fmt"
	"slices"

	"github.com/asakatsu/internal/clock"
	"github.com/asakatsu/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions 是所有子命令共享的全局参数
type RootOptions struct {
	DatabasePath string
	Timezone     string
	Format       string
	Verbose      bool
}

// ValidFormats 为 --format 允许的取值
var ValidFormats = []string{"text", "json"}

// NewRootCommand 构造 wakeupctl 根命令
func NewRootCommand() *cobra.Command {
	defaults := config.Default()
	opts := &RootOptions{
		DatabasePath: defaults.DatabasePath,
		Timezone:     defaults.Timezone,
	}

	cmd := &cobra.Command{
		Use:   "wakeupctl",
		Short: "Maintenance tool for the wake-up login database",
		Long: `Inspect wake-up records and titles, seed the title catalog,
and re-run title evaluation for a user and day.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := clock.LoadLocation(opts.Timezone); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", opts.Timezone, err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DatabasePath, "db", opts.DatabasePath, "sqlite database path")
	cmd.PersistentFlags().StringVar(&opts.Timezone, "tz", opts.Timezone, "IANA timezone used to bucket days")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewEvaluateCommand(opts))
	cmd.AddCommand(NewTitlesCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}
