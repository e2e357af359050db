package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewTitlesCommand 创建 titles 命令
func NewTitlesCommand(rootOpts *RootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "titles",
		Short: "List the visible catalog or a user's titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTitles(cmd, rootOpts, name)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "list titles held by this user")
	return cmd
}

func runTitles(cmd *cobra.Command, opts *RootOptions, name string) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openEnv(opts)
	if err != nil {
		return out.Fail(err)
	}
	defer e.Close()

	if name == "" {
		catalog, err := e.titles.VisibleCatalog(cmd.Context())
		if err != nil {
			return out.Fail(err)
		}
		return out.Success(catalog, func(w io.Writer) {
			for _, entry := range catalog {
				fmt.Fprintf(w, "%-14s %-16s %d holder(s)\n", entry.Code, entry.Name, entry.Holders)
			}
		})
	}

	held, err := e.titles.TitlesForUser(cmd.Context(), name)
	if err != nil {
		return out.Fail(err)
	}
	return out.Success(held, func(w io.Writer) {
		if len(held) == 0 {
			fmt.Fprintf(w, "%s has no titles yet\n", name)
			return
		}
		for _, title := range held {
			fmt.Fprintf(w, "%s  %-14s %s\n", title.AcquiredDay, title.Code, title.Name)
		}
	})
}
