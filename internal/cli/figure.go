package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/nsqipdash/internal/chart"
	"github.com/JonMunkholm/nsqipdash/internal/core"
)

type figureOptions struct {
	selection selectionOptions
	columns   core.FigureColumns
	bins      int
	width     int
	height    int
	data      bool
	output    string
}

func newFigureCommand(g *globalOptions) *cobra.Command {
	opts := &figureOptions{}

	cmd := &cobra.Command{
		Use:   "figure <1-4> <file>...",
		Short: "Render a dashboard figure or write its raw data",
		Long: `Render one of the dashboard figures of the filtered rows as PNG:

  1  heatmap of --heatmap-y against --heatmap-x
  2  pie chart of procedure counts by --pie
  3  histogram of --hist-y
  4  histogram of --hist-x

With --data the figure's source columns are written as comma-delimited
text under the same name the dashboard download uses. Pickers default to
the first column.`,
		Example: `  nsqipctl figure 3 registry.csv --all --hist-y AGE -o age.png
  nsqipctl figure 2 registry.csv -s Orthopedics --pie SEX --data -o .`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < core.FigureHeatmap || n > core.FigureHistX {
				return usageError(fmt.Errorf("%w: %q must be 1, 2, 3 or 4", core.ErrUnknownFigure, args[0]))
			}

			ds, err := loadDataset(cmd.Context(), g, &opts.selection, args[1:])
			if err != nil {
				return err
			}
			v := ds.session.SetFigures(opts.columns)

			if opts.data {
				return writeFigureData(cmd, v, n, opts.output)
			}
			return writeFigureImage(cmd, v, n, opts)
		},
	}

	registerSelectionFlags(cmd, &opts.selection)
	f := cmd.Flags()
	f.StringVar(&opts.columns.Pie, "pie", "", "column counted by figure 2")
	f.StringVar(&opts.columns.HistX, "hist-x", "", "column binned by figure 4")
	f.StringVar(&opts.columns.HistY, "hist-y", "", "column binned by figure 3")
	f.StringVar(&opts.columns.HeatmapX, "heatmap-x", "", "x axis of figure 1")
	f.StringVar(&opts.columns.HeatmapY, "heatmap-y", "", "y axis of figure 1")
	f.IntVar(&opts.bins, "bins", core.DefaultBins, "bins per numeric axis")
	f.IntVar(&opts.width, "width", chart.DefaultOptions().Width, "image width in pixels")
	f.IntVar(&opts.height, "height", chart.DefaultOptions().Height, "image height in pixels")
	f.BoolVar(&opts.data, "data", false, "write the figure's raw data instead of the image")
	f.StringVarP(&opts.output, "output", "o", "", "PNG file, or directory for --data (default: stdout)")

	return cmd
}

func writeFigureImage(cmd *cobra.Command, v core.View, n int, opts *figureOptions) error {
	var buf bytes.Buffer
	err := chart.Figure(&buf, v, n, opts.bins, chart.Options{Width: opts.width, Height: opts.height})
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), filepath.Clean(opts.output))

	return err
}

func writeFigureData(cmd *cobra.Command, v core.View, n int, dir string) error {
	payload, err := v.FigureData(n)
	if err != nil {
		return err
	}

	if dir == "" {
		_, err = cmd.OutOrStdout().Write(payload.Data)
		return err
	}
	path, err := core.SaveTo(dir, payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)

	return err
}
