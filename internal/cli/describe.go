package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

type describeOptions struct {
	selection selectionOptions
	json      bool
}

// describeReport is the JSON form of describe.
type describeReport struct {
	Files     []string          `json:"files"`
	Rows      int               `json:"rows"`
	Subset    int               `json:"subset_rows"`
	Specialty []string          `json:"specialty"`
	Codes     []string          `json:"codes"`
	Summary   core.Summary      `json:"summary"`
	SexCounts []core.ValueCount `json:"sex_counts"`
}

func newDescribeCommand(g *globalOptions) *cobra.Command {
	opts := &describeOptions{}

	cmd := &cobra.Command{
		Use:   "describe <file>...",
		Short: "Print descriptive statistics of the filtered rows",
		Long: `Load and filter the files like filter does, then print count, mean,
standard deviation, minimum, quartiles and maximum of every numeric column,
unique/top/freq of every other column, and the counts of the sex column.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), g, &opts.selection, args)
			if err != nil {
				return err
			}

			v := ds.view
			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(describeReport{
					Files:     v.Files,
					Rows:      v.Rows,
					Subset:    v.Subset.Len(),
					Specialty: nonNil(v.Specialty),
					Codes:     nonNil(v.Codes),
					Summary:   v.Stats(),
					SexCounts: v.SexCounts(),
				})
			}

			return printDescribe(cmd.OutOrStdout(), v)
		},
	}

	registerSelectionFlags(cmd, &opts.selection)
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")

	return cmd
}

func printDescribe(out io.Writer, v core.View) error {
	summary := v.Stats()
	_, _ = fmt.Fprintf(out, "%d of %d rows selected\n\n", summary.Rows, v.Rows)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "COLUMN\tCOUNT\tMEAN\tSTD\tMIN\t25%\t50%\t75%\tMAX")
	for _, c := range summary.NumericColumns() {
		n := c.Numeric
		std := "NaN"
		if n.Std != nil {
			std = num(*n.Std)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Column, c.Count, num(n.Mean), std, num(n.Min), num(n.Q1), num(n.Median), num(n.Q3), num(n.Max))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "COLUMN\tCOUNT\tUNIQUE\tTOP\tFREQ")
	for _, c := range summary.Columns {
		if c.Text == nil {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\n", c.Column, c.Count, c.Text.Unique, c.Text.Top, c.Text.Freq)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := v.SexCounts()
	if len(counts) == 0 {
		return nil
	}
	_, _ = fmt.Fprintf(out, "\n%s Counts\n", v.SexColumn)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range counts {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", c.Label, c.Count)
	}

	return tw.Flush()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
