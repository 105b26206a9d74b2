package config

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jopamo/hxm/errors"
	"github.com/jopamo/hxm/logger"
)

const (
	watchRetryMax      = 5
	watchInitialBackoff = 1 * time.Second
	watchMaxBackoff     = 60 * time.Second
)

// ReloadWatcher watches the resolved config file for writes and invokes
// onChange once per observed write, satisfying the reload half of
// --reconfigure at the ambient layer. Opening a watch on a path that
// doesn't exist yet (or vanishes, e.g. during an atomic editor rename)
// is retried with exponential backoff rather than treated as fatal.
type ReloadWatcher struct {
	path     string
	onChange func()

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReloadWatcher creates a watcher for path. If path is empty (no
// config file present on disk), Start is a no-op.
func NewReloadWatcher(path string, onChange func()) *ReloadWatcher {
	return &ReloadWatcher{path: path, onChange: onChange}
}

// Start begins watching in the background. Safe to call with an empty path.
func (w *ReloadWatcher) Start(ctx context.Context) {
	if w.path == "" {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels the watch goroutine and waits for it to exit.
func (w *ReloadWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *ReloadWatcher) run(ctx context.Context) {
	defer w.wg.Done()

	backoff := watchInitialBackoff
	attempt := 0

	for {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Errorw("failed to create config watcher", "error", errors.Wrap(err, "fsnotify.NewWatcher"))
			return
		}

		if err := watcher.Add(w.path); err != nil {
			watcher.Close()
			attempt++
			if attempt > watchRetryMax {
				logger.Warnw("giving up on config watch after repeated failures",
					"path", w.path, "attempts", attempt)
				return
			}
			logger.Debugw("config watch add failed, backing off",
				"path", w.path, "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > watchMaxBackoff {
				backoff = watchMaxBackoff
			}
			continue
		}

		attempt = 0
		backoff = watchInitialBackoff
		w.watchLoop(ctx, watcher)
		watcher.Close()

		select {
		case <-ctx.Done():
			return
		default:
			// watcher errored out (e.g. underlying inode replaced); retry the open.
		}
	}
}

func (w *ReloadWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Debugw("config file changed", "path", ev.Name, "op", ev.Op.String())
				Reset()
				if w.onChange != nil {
					w.onChange()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("config watcher error", "error", err)
			return
		}
	}
}
