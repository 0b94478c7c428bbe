package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

type filterOptions struct {
	selection selectionOptions
	columns   []string
	outputDir string
}

func newFilterCommand(g *globalOptions) *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter <file>...",
		Short: "Write the rows matching the specialty and code selections",
		Long: `Load the files, keep the rows whose specialty is one of --specialty and
whose code is one of --code, and write them as comma-delimited text.

Without --output-dir the rows go to stdout. With it they are saved as
<codes>_NSQIP_Filtered_CPT_Codes.csv inside that directory. An empty
selection keeps no rows.`,
		Example: `  nsqipctl filter registry.xlsx -s "General Surgery" -c 44140 -c 47562
  nsqipctl filter 2019.txt 2020.txt --all --output-dir ./exports`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), g, &opts.selection, args)
			if err != nil {
				return err
			}

			payload, err := ds.view.ExportColumns(opts.columns)
			if err != nil {
				return err
			}

			if opts.outputDir == "" {
				_, err = cmd.OutOrStdout().Write(payload.Data)
				return err
			}

			path, err := core.SaveTo(opts.outputDir, payload)
			if err != nil {
				return err
			}
			slog.Info("filtered rows saved",
				slog.String("path", path),
				slog.Int("rows", ds.view.Subset.Len()),
			)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)

			return err
		},
	}

	registerSelectionFlags(cmd, &opts.selection)
	f := cmd.Flags()
	f.StringArrayVar(&opts.columns, "column", nil, "column to write (repeatable, default: all)")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory to save the export in")

	return cmd
}
