package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newColumnsCommand(g *globalOptions) *cobra.Command {
	var showRows bool

	cmd := &cobra.Command{
		Use:   "columns <file>...",
		Short: "List the columns of the merged files",
		Long: `Load the files, merge them by column name and print the merged column
list in order, one name per line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), g, &selectionOptions{}, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range ds.view.Columns {
				if _, err := fmt.Fprintln(out, c); err != nil {
					return err
				}
			}
			if showRows {
				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d rows, %d columns\n", ds.view.Rows, len(ds.view.Columns))
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&showRows, "rows", false, "also report the merged row count on stderr")

	return cmd
}
