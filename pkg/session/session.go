// Package session provides a local analytics session: a warehouse directory
// for datasets, an Arrow allocator, and an experiment tracking store wired
// together behind one handle. Tests spin up throwaway sessions the same way
// production callers do.
package session

import (
	"context"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/visionlake/geocol/pkg/config"
	"github.com/visionlake/geocol/pkg/dataset"
	"github.com/visionlake/geocol/pkg/errors"
	"github.com/visionlake/geocol/pkg/logger"
	"github.com/visionlake/geocol/pkg/tracking"
)

// Session is a local analytics session.
type Session struct {
	cfg      *config.SessionConfig
	log      *zap.Logger
	mem      memory.Allocator
	tracking *tracking.Store
}

// Open validates the configuration, prepares the warehouse directory, and
// opens the tracking store.
func Open(ctx context.Context, cfg *config.SessionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Warehouse, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create warehouse directory")
	}

	log := logger.WithContext(ctx).With(zap.String("session", cfg.Name))

	store, err := tracking.Open(cfg.TrackingPath(), log)
	if err != nil {
		return nil, err
	}

	log.Info("session opened",
		zap.String("warehouse", cfg.Warehouse),
		zap.String("tracking", cfg.TrackingPath()))

	return &Session{
		cfg:      cfg,
		log:      log,
		mem:      memory.NewGoAllocator(),
		tracking: store,
	}, nil
}

// Config returns the session configuration.
func (s *Session) Config() *config.SessionConfig { return s.cfg }

// Tracking returns the session's experiment tracking store.
func (s *Session) Tracking() *tracking.Store { return s.tracking }

// Allocator returns the session's Arrow allocator.
func (s *Session) Allocator() memory.Allocator { return s.mem }

// DatasetPath returns the warehouse path for a named dataset.
func (s *Session) DatasetPath(name string) string {
	return filepath.Join(s.cfg.Warehouse, name+".arrow")
}

// WriteDataset writes rows under the given dataset name and returns the
// file path. Row order is preserved.
func (s *Session) WriteDataset(ctx context.Context, name string, cols []dataset.ColumnSpec, rows []map[string]interface{}) (string, error) {
	path := s.DatasetPath(name)

	f, err := os.Create(path) //nolint:gosec // G304: path is derived from the warehouse root
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to create dataset file")
	}

	w, err := dataset.NewWriter(f, cols, dataset.WithAllocator(s.mem))
	if err != nil {
		_ = f.Close()
		return "", err
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			_ = w.Close()
			_ = f.Close()
			return "", errors.Wrap(ctx.Err(), errors.ErrorTypeInternal, "dataset write canceled")
		}
		if err := w.Write(row); err != nil {
			_ = w.Close()
			_ = f.Close()
			return "", err
		}
	}

	if err := w.Close(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to close dataset file")
	}

	s.log.Info("dataset written",
		zap.String("dataset", name),
		zap.String("path", path),
		zap.Int("rows", len(rows)))
	return path, nil
}

// OpenDataset opens a named dataset for reading. The caller closes the
// returned reader.
func (s *Session) OpenDataset(name string) (*dataset.Reader, error) {
	return dataset.Open(s.DatasetPath(name))
}

// Close closes the tracking store.
func (s *Session) Close() error {
	s.log.Info("session closed")
	return s.tracking.Close()
}
