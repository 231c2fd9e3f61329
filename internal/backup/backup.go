// Package backup writes dated export snapshots into the data directory and
// prunes old ones.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/grapebaby/grape/internal/metrics"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/storage"
)

// Dir is the backup directory relative to the data root.
const Dir = "backups"

const (
	filePrefix = "grape-export-"
	fileSuffix = ".json"
)

// Exporter produces the snapshot to back up.
type Exporter interface {
	Export(ctx context.Context) (*models.Snapshot, error)
	ExportFilename() string
}

// Writer writes backups of one subject.
type Writer struct {
	exporter Exporter
	files    storage.Provider
	keep     int
	logger   *slog.Logger
}

// NewWriter creates a Writer that keeps the newest keep files. keep <= 0
// keeps everything.
func NewWriter(exporter Exporter, files storage.Provider, keep int, logger *slog.Logger) *Writer {
	return &Writer{exporter: exporter, files: files, keep: keep, logger: logger}
}

// Write exports a snapshot to backups/grape-export-<civil date>.json,
// replacing an earlier backup of the same day, then prunes. It returns the
// path written.
func (w *Writer) Write(ctx context.Context) (string, error) {
	p, err := w.write(ctx)
	if err != nil {
		metrics.RecordBackup("failed")
		return "", err
	}
	metrics.RecordBackup("ok")

	if err := w.prune(); err != nil {
		w.logger.Warn("backup: prune failed", slog.String("error", err.Error()))
	}
	return p, nil
}

func (w *Writer) write(ctx context.Context) (string, error) {
	snap, err := w.exporter.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: export: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup: encode: %w", err)
	}
	p := path.Join(Dir, w.exporter.ExportFilename())
	if err := w.files.Write(p, data); err != nil {
		return "", err
	}
	w.logger.Info("backup: written", slog.String("path", p), slog.Int("records", snap.Count()))
	return p, nil
}

// prune removes all but the newest w.keep backups. File names sort by date.
func (w *Writer) prune() error {
	if w.keep <= 0 {
		return nil
	}
	names, err := w.List()
	if err != nil {
		return err
	}
	if len(names) <= w.keep {
		return nil
	}
	for _, p := range names[:len(names)-w.keep] {
		if err := w.files.Delete(p); err != nil {
			return err
		}
		w.logger.Debug("backup: pruned", slog.String("path", p))
	}
	return nil
}

// List returns the backup paths, oldest first.
func (w *Writer) List() ([]string, error) {
	metas, err := w.files.List(Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range metas {
		base := path.Base(m.Path)
		if strings.HasPrefix(base, filePrefix) && strings.HasSuffix(base, fileSuffix) {
			out = append(out, m.Path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// DefaultInterval is the backup period when none is configured.
const DefaultInterval = 24 * time.Hour

// Loop writes a backup every interval until ctx is cancelled. The first
// backup is written immediately.
func (w *Writer) Loop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w.logger.Info("backup: loop started", slog.Duration("interval", interval), slog.Int("keep", w.keep))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Write(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("backup: failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			w.logger.Info("backup: loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}
