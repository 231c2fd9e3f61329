// Package inbox imports snapshot documents dropped into the data directory.
// Each file is imported once: on success it moves to inbox/processed/, on
// failure to inbox/failed/, and its checksum is kept in the import ledger.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/grapebaby/grape/internal/metrics"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/storage"
)

// Directories relative to the data root.
const (
	Dir          = "inbox"
	ProcessedDir = "inbox/processed"
	FailedDir    = "inbox/failed"
)

// Import outcomes, as reported to metrics.
const (
	StatusImported  = "imported"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
)

// Importer writes a decoded snapshot.
type Importer interface {
	Import(ctx context.Context, snap *models.Snapshot) (int, error)
}

// Ledger remembers which files have been imported.
type Ledger interface {
	ImportChecksums(ctx context.Context) (map[string]string, error)
	RecordImport(ctx context.Context, meta models.FileMetadata, records int, at time.Time) error
}

// Inbox processes the files in Dir.
type Inbox struct {
	importer Importer
	ledger   Ledger
	files    storage.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Inbox.
func New(importer Importer, ledger Ledger, files storage.Provider, logger *slog.Logger) *Inbox {
	return &Inbox{
		importer: importer,
		ledger:   ledger,
		files:    files,
		logger:   logger,
		now:      time.Now,
	}
}

// Result describes one processed file.
type Result struct {
	Path    string
	Status  string
	Records int
	Err     error
}

// Sync processes every document currently in Dir.
func (in *Inbox) Sync(ctx context.Context) ([]Result, error) {
	metas, err := in.files.List(Dir)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, nil
	}
	seen, err := in.ledger.ImportChecksums(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(metas))
	for _, m := range metas {
		out = append(out, in.process(ctx, m, seen))
	}
	return out, nil
}

// ImportFile processes one file by its path relative to the data root.
func (in *Inbox) ImportFile(ctx context.Context, rel string) (Result, error) {
	metas, err := in.files.List(path.Dir(rel))
	if err != nil {
		return Result{}, err
	}
	for _, m := range metas {
		if m.Path != rel {
			continue
		}
		seen, err := in.ledger.ImportChecksums(ctx)
		if err != nil {
			return Result{}, err
		}
		return in.process(ctx, m, seen), nil
	}
	return Result{}, fmt.Errorf("inbox: %s is not a document", rel)
}

func (in *Inbox) process(ctx context.Context, m models.FileMetadata, seen map[string]string) Result {
	res := Result{Path: m.Path}
	log := in.logger.With(slog.String("path", m.Path))

	if seen[m.Path] == m.Checksum {
		res.Status = StatusDuplicate
		log.Info("inbox: already imported")
		in.finish(m.Path, ProcessedDir, log)
		metrics.RecordImport(res.Status)
		return res
	}

	res.Records, res.Err = in.load(ctx, m)
	if res.Err != nil {
		res.Status = StatusFailed
		log.Warn("inbox: import failed", slog.String("error", res.Err.Error()))
		in.finish(m.Path, FailedDir, log)
		metrics.RecordImport(res.Status)
		return res
	}

	res.Status = StatusImported
	if err := in.ledger.RecordImport(ctx, m, res.Records, in.now()); err != nil {
		log.Warn("inbox: record import failed", slog.String("error", err.Error()))
	}
	seen[m.Path] = m.Checksum
	log.Info("inbox: imported", slog.Int("records", res.Records))
	in.finish(m.Path, ProcessedDir, log)
	metrics.RecordImport(res.Status)
	return res
}

func (in *Inbox) load(ctx context.Context, m models.FileMetadata) (int, error) {
	data, err := in.files.Read(m.Path)
	if err != nil {
		return 0, err
	}
	snap, err := Decode(m.Path, data)
	if err != nil {
		return 0, err
	}
	return in.importer.Import(ctx, snap)
}

func (in *Inbox) finish(p, dir string, log *slog.Logger) {
	if err := in.files.Move(p, path.Join(dir, path.Base(p))); err != nil {
		log.Warn("inbox: move failed", slog.String("to", dir), slog.String("error", err.Error()))
	}
}
