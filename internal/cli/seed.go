package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/asakatsu/internal/service"
	"github.com/spf13/cobra"
)

// SeedResult 是 seed 命令的输出
type SeedResult struct {
	Source string   `json:"source"`
	Codes  []string `json:"codes"`
}

// NewSeedCommand 创建 seed 命令
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the title catalog",
		Long: `Upsert title definitions into the database.

Without --file the built-in catalog is used. Existing awards are kept;
only names, descriptions, visibility and sort order are updated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, rootOpts, file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file (defaults to the built-in catalog)")
	return cmd
}

func runSeed(cmd *cobra.Command, opts *RootOptions, file string) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	seeds, source, err := loadCatalog(file)
	if err != nil {
		return out.Fail(err)
	}
	out.VerboseLog("loaded %d title(s) from %s", len(seeds), source)

	e, err := openEnv(opts)
	if err != nil {
		return out.Fail(err)
	}
	defer e.Close()

	if err := e.titles.Seed(cmd.Context(), seeds); err != nil {
		return out.Fail(err)
	}

	result := SeedResult{Source: source, Codes: make([]string, 0, len(seeds))}
	for _, seed := range seeds {
		result.Codes = append(result.Codes, seed.Code)
	}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Seeded %d title(s) from %s\n", len(result.Codes), source)
		for _, seed := range seeds {
			marker := ""
			if seed.Hidden {
				marker = " (hidden)"
			}
			fmt.Fprintf(w, "  %-14s %s%s\n", seed.Code, seed.Name, marker)
		}
	})
}

func loadCatalog(file string) ([]service.TitleSeed, string, error) {
	if file == "" {
		seeds, err := service.DefaultCatalog()
		return seeds, "built-in catalog", err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, file, fmt.Errorf("read catalog: %w", err)
	}
	seeds, err := service.ParseCatalog(data)
	return seeds, file, err
}
