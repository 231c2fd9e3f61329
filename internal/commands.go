package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/grapebaby/grape/internal/backup"
	"github.com/grapebaby/grape/internal/inbox"
	"github.com/grapebaby/grape/internal/mcpserver"
)

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(append([]Option{WithConsole(os.Stderr)}, opts...))
	rt, err := app.start(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(rt.svc, app.version).ServeStdio()
}

// RunBackup writes one export into backups/ and prunes old ones.
func RunBackup(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	rt, err := app.start(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	name, err := backup.NewWriter(rt.svc, rt.files, rt.cfg.Backup.Keep, rt.logger).Write(ctx)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	rt.logger.Info("Backup written", slog.String("path", name))
	return nil
}

// RunImport imports the given files, or everything waiting in the inbox when
// none are given. Files outside the data directory are copied into the inbox
// first so they follow the same processed/failed bookkeeping.
func RunImport(ctx context.Context, files []string, opts ...Option) error {
	app := newApplication(opts)
	rt, err := app.start(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	in := inbox.New(rt.svc, rt.db, rt.files, rt.logger)

	var results []inbox.Result
	if len(files) == 0 {
		results, err = in.Sync(ctx)
		if err != nil {
			return fmt.Errorf("sync inbox: %w", err)
		}
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		rel := path.Join(inbox.Dir, filepath.Base(f))
		if err := rt.files.Write(rel, data); err != nil {
			return fmt.Errorf("stage %s: %w", f, err)
		}
		res, err := in.ImportFile(ctx, rel)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	rt.logger.Info("Import finished", slog.Int("files", len(results)), slog.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("import: %d of %d files failed", failed, len(results))
	}
	return nil
}
