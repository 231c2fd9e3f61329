package inbox

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/grapebaby/grape/internal/storage"
)

// settle is how long a file must stay quiet before it is imported, so that
// a half-written copy is not read.
const settle = 300 * time.Millisecond

// Watch imports files as they appear in Dir until ctx is cancelled. Only the
// inbox itself is watched; processed/ and failed/ are ignored.
func (in *Inbox) Watch(ctx context.Context) error {
	dir, err := in.files.Abs(Dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	in.logger.Info("inbox: watching", slog.String("dir", dir))

	pending := make(map[string]struct{})
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settle)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			for name := range pending {
				delete(pending, name)
				rel := path.Join(Dir, name)
				if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
					continue
				}
				if _, err := in.ImportFile(ctx, rel); err != nil {
					in.logger.Warn("inbox: import file failed", slog.String("path", rel), slog.String("error", err.Error()))
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if filepath.Dir(ev.Name) != dir || !storage.IsDocument(name) {
				continue
			}
			pending[name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
