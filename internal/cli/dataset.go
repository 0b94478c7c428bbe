package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/nsqipdash/internal/config"
	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// selectionOptions are the filter flags shared by the data commands.
type selectionOptions struct {
	specialty []string
	codes     []string
	all       bool
}

func registerSelectionFlags(cmd *cobra.Command, opts *selectionOptions) {
	f := cmd.Flags()
	f.StringArrayVarP(&opts.specialty, "specialty", "s", nil, "specialty to keep (repeatable)")
	f.StringArrayVarP(&opts.codes, "code", "c", nil, "procedure code to keep (repeatable)")
	f.BoolVar(&opts.all, "all", false, "keep every specialty and code offered")
}

// dataset is a loaded, filtered session used by a single command.
type dataset struct {
	session *core.Session
	view    core.View
}

// loadDataset reads paths as one upload and applies the selections. With
// --all every offered specialty is selected, then every code the
// specialties leave on offer.
func loadDataset(ctx context.Context, g *globalOptions, sel *selectionOptions, paths []string) (*dataset, error) {
	maxSize, err := config.ParseByteSize(g.maxFileSize)
	if err != nil {
		return nil, usageError(fmt.Errorf("invalid --max-file-size: %w", err))
	}

	files := make([]core.RawFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, core.RawFile{Name: filepath.Base(p), Data: data})
	}

	svc := core.NewService(core.ServiceConfig{
		ChunkSize:     g.chunkSize,
		MaxFileSize:   int64(maxSize),
		MaxConcurrent: 1,
		Columns: core.DatasetColumns{
			Specialty: g.specialtyColumn,
			Code:      g.codeColumn,
			Sex:       g.sexColumn,
		},
	})
	sess := svc.Sessions().Create()
	if _, err := svc.Upload(ctx, sess, files); err != nil {
		return nil, err
	}

	v := sess.Select(sel.specialty, sel.codes)
	if sel.all {
		v = sess.Select(v.SpecialtyOptions, nil)
		v = sess.Select(v.SpecialtyOptions, v.CodeOptions)
	}
	slog.Debug("dataset loaded",
		slog.Int("files", len(files)),
		slog.Int("rows", v.Rows),
		slog.Int("subset_rows", v.Subset.Len()),
	)

	return &dataset{session: sess, view: v}, nil
}
