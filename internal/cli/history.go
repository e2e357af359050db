package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/asakatsu/internal/service"
	"github.com/spf13/cobra"
)

// HistoryEntry 是 history 命令输出中的一条记录
type HistoryEntry struct {
	Name      string `json:"name"`
	TimeOfDay string `json:"time_of_day"`
}

// HistoryDay 汇总某天的记录
type HistoryDay struct {
	Day     string         `json:"day"`
	Wakeups []HistoryEntry `json:"wakeups"`
}

// NewHistoryCommand 创建 history 命令
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		days int
		end  string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show wake-up records of recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts, end, days)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "number of days to include")
	cmd.Flags().StringVar(&end, "end", "", "last day to include, 2006-01-02 (defaults to today)")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *RootOptions, end string, days int) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if days <= 0 {
		return out.Fail(errors.Join(service.ErrInvalidInput, fmt.Errorf("--days must be positive, got %d", days)))
	}

	e, err := openEnv(opts)
	if err != nil {
		return out.Fail(err)
	}
	defer e.Close()

	last, err := e.resolveDay(end)
	if err != nil {
		return out.Fail(err)
	}

	grouped, err := e.wakeups.History(cmd.Context(), last, days)
	if err != nil {
		return out.Fail(err)
	}

	result := make([]HistoryDay, 0, len(grouped))
	for _, group := range grouped {
		day := HistoryDay{Day: group.Day, Wakeups: make([]HistoryEntry, 0, len(group.Events))}
		for _, event := range group.Events {
			day.Wakeups = append(day.Wakeups, HistoryEntry{Name: event.Name, TimeOfDay: event.TimeOfDay})
		}
		result = append(result, day)
	}

	return out.Success(result, func(w io.Writer) {
		if len(result) == 0 {
			fmt.Fprintln(w, "No wake-ups recorded")
			return
		}
		for _, day := range result {
			fmt.Fprintf(w, "📅 %s\n", day.Day)
			for _, entry := range day.Wakeups {
				fmt.Fprintf(w, "  %s  %s\n", entry.TimeOfDay, entry.Name)
			}
		}
	})
}
