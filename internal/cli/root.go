// Package cli implements the cobra command tree for nsqipctl, the offline
// companion of the dashboard. Every command loads the given files the same
// way an upload does and applies the specialty and code selections.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/nsqipdash/internal/core"
	_ "github.com/JonMunkholm/nsqipdash/internal/core/formats" // Register file readers
	"github.com/JonMunkholm/nsqipdash/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// usageError marks err as a command-line mistake (exit code 2).
func usageError(err error) error {
	return &ExitError{Code: 2, Err: err}
}

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		printError(cmd.ErrOrStderr(), err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// printError writes the coded user message for err, followed by the
// technical detail when the two differ.
func printError(w io.Writer, err error) {
	if !core.IsUserFacing(err) {
		_, _ = fmt.Fprintln(w, "Error:", err)
		return
	}
	_, _ = fmt.Fprintln(w, "Error:", core.FormatUserError(err))
	_, _ = fmt.Fprintln(w, "  detail:", err)
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logLevel        string
	logFormat       string
	chunkSize       int
	maxFileSize     string
	specialtyColumn string
	codeColumn      string
	sexColumn       string
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "nsqipctl",
		Short: "Filter and summarize NSQIP registry exports",
		Long: `nsqipctl loads NSQIP registry exports (.xlsx, .csv or tab-delimited text,
optionally gzip, bzip2 or xz compressed), merges them by column name and
filters the rows by surgical specialty and then by CPT code.

It writes the filtered rows, descriptive statistics and the dashboard
figures without starting the web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.logFormat {
			case "text", "json":
			default:
				return usageError(fmt.Errorf("invalid --log-format %q: must be text or json", opts.logFormat))
			}
			if opts.specialtyColumn == opts.codeColumn {
				return usageError(errors.New("--specialty-column and --code-column must differ"))
			}

			logger := logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			slog.SetDefault(logger)
			logger.Debug("cli started",
				slog.String("command", cmd.Name()),
				slog.Int("chunk_size", opts.chunkSize),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text, json")
	pf.IntVar(&opts.chunkSize, "chunk-size", core.DefaultChunkSize, "rows read per chunk")
	pf.StringVar(&opts.maxFileSize, "max-file-size", "200MB", "largest accepted file after decompression")
	pf.StringVar(&opts.specialtyColumn, "specialty-column", "SURGSPEC", "column filtered by --specialty")
	pf.StringVar(&opts.codeColumn, "code-column", "CPT", "column filtered by --code")
	pf.StringVar(&opts.sexColumn, "sex-column", "SEX", "column counted by describe")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(
		newColumnsCommand(opts),
		newFilterCommand(opts),
		newDescribeCommand(opts),
		newFigureCommand(opts),
	)

	return cmd
}
