package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/asakatsu/internal/service"
	"github.com/spf13/cobra"
)

const recordTimeLayout = service.DayLayout + " " + service.TimeOfDayLayout

// RecordResult 是 record 命令的输出
type RecordResult struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Day       string `json:"day"`
	TimeOfDay string `json:"time_of_day"`
}

// NewRecordCommand 创建 record 命令，用于补录起床记录
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	var name, at string
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a wake-up record without the quiz",
		Long: `Append a wake-up record for a user.

--at takes "2006-01-02 15:04:05" in the configured timezone and
defaults to now. Titles are not evaluated; run evaluate afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, rootOpts, name, at)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "user name")
	cmd.Flags().StringVar(&at, "at", "", `wake-up time, "2006-01-02 15:04:05"`)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runRecord(cmd *cobra.Command, opts *RootOptions, name, at string) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openEnv(opts)
	if err != nil {
		return out.Fail(err)
	}
	defer e.Close()

	ts := e.clock.Now()
	if at != "" {
		ts, err = time.ParseInLocation(recordTimeLayout, at, e.loc)
		if err != nil {
			return out.Fail(errors.Join(service.ErrInvalidInput, fmt.Errorf("parse --at: %w", err)))
		}
	}

	event, err := e.wakeups.RecordEvent(cmd.Context(), name, ts)
	if err != nil {
		return out.Fail(err)
	}

	result := RecordResult{ID: event.ID, Name: event.Name, Day: event.Day, TimeOfDay: event.TimeOfDay}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Recorded %s at %s %s\n", result.Name, result.Day, result.TimeOfDay)
	})
}
