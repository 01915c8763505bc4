package inbox

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/domain/triage"
	"voltway/internal/errs"
)

// Handler consumes one inbound message. A handler error is logged and does
// not stop the watch loop; one bad email must not wedge the inbox.
type Handler func(ctx context.Context, msg triage.Message) error

// Watch blocks on dir until ctx is cancelled, invoking handle for every
// newly created or rewritten .json email.
func Watch(ctx context.Context, dir string, handle Handler) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, "create inbox watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return errs.Wrapf(err, "watch email directory %s", dir)
	}
	logging.Info(ctx, "watching inbox", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			deliverFile(ctx, event.Name, handle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn(ctx, "inbox watcher error", slog.String("error", err.Error()))
		}
	}
}

func deliverFile(ctx context.Context, path string, handle Handler) {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn(ctx, "read inbox file failed", slog.String("file", path), slog.String("error", err.Error()))
		return
	}

	msg, err := ParseFile(path, data)
	if err != nil {
		logging.Warn(ctx, "skip malformed inbox file", slog.String("file", filepath.Base(path)), slog.String("error", err.Error()))
		return
	}

	if err := handle(ctx, msg); err != nil {
		logging.Error(ctx, "handle inbox message failed", slog.String("file", msg.Filename), slog.String("error", err.Error()))
	}
}
