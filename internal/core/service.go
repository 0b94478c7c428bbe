package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultUploadTimeout bounds parsing one upload request.
const DefaultUploadTimeout = 5 * time.Minute

// ServiceConfig holds the settings of a Service. Zero values select defaults.
type ServiceConfig struct {
	ChunkSize     int
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	UploadTimeout time.Duration
	SessionTTL    time.Duration
	Columns       DatasetColumns
}

// Service ties the loader, the session store and the upload limiter together.
// It is the entry point for the web layer and the CLI.
type Service struct {
	loader        *Loader
	sessions      *SessionStore
	limiter       *UploadLimiter
	uploadTimeout time.Duration
}

// NewService creates a new Service instance.
func NewService(cfg ServiceConfig) *Service {
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	if cfg.Columns == (DatasetColumns{}) {
		cfg.Columns = DefaultDatasetColumns()
	}
	return &Service{
		loader:        NewLoader(cfg.ChunkSize, cfg.MaxFileSize),
		sessions:      NewSessionStore(cfg.Columns, cfg.SessionTTL),
		limiter:       NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		uploadTimeout: cfg.UploadTimeout,
	}
}

// Sessions returns the session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Limiter returns the upload limiter.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Loader returns the file loader.
func (s *Service) Loader() *Loader {
	return s.loader
}

// Upload parses files and, only if every file loads, replaces the session's
// table with their merge. On error the session is left as it was.
func (s *Service) Upload(ctx context.Context, sess *Session, files []RawFile) (View, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return View{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	start := time.Now()
	table, err := s.loader.LoadAll(ctx, files)
	if err != nil {
		return View{}, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	sess.Load(table, names)

	slog.Info("upload processed",
		"session", sess.ID,
		"files", len(files),
		"rows", table.Len(),
		"columns", len(table.Columns()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return sess.View(), nil
}

// SaveExport writes the session's filtered rows into dir. The session is
// not changed whether or not the write succeeds.
func (s *Service) SaveExport(sess *Session, dir string) (string, error) {
	payload, err := sess.View().Export()
	if err != nil {
		return "", err
	}
	path, err := SaveTo(dir, payload)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", payload.Filename, err)
	}
	slog.Info("export saved", "session", sess.ID, "path", path, "bytes", len(payload.Data))
	return path, nil
}
