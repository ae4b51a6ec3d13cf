package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/specialistvlad/addongraph/internal/manifest"
	"github.com/specialistvlad/addongraph/internal/resolver"
)

// DefaultDebounce is how long Watch waits for more changes before it
// resolves again.
const DefaultDebounce = 300 * time.Millisecond

// Watch resolves once, then again every time a manifest under the
// configured paths is created, written, renamed or removed. Each outcome is
// passed to onResult. Watch blocks until ctx is cancelled.
func (a *App) Watch(ctx context.Context, debounce time.Duration, onResult func(*resolver.Result, error)) error {
	ctx = a.Context(ctx)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range a.config.Paths {
		if err := a.watchTree(watcher, p); err != nil {
			return err
		}
	}
	a.logger.Info("Watching for manifest changes.", "paths", a.config.Paths)

	onResult(a.Resolve(ctx))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			a.logger.Debug("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !a.relevant(watcher, event) {
				continue
			}
			a.logger.Debug("Manifest change detected.", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("Filesystem watcher error.", "error", err)

		case <-fire:
			fire = nil
			a.logger.Info("Re-resolving after manifest change.")
			onResult(a.Resolve(ctx))
		}
	}
}

// relevant reports whether event may change the resolution. New directories
// are watched as they appear, since fsnotify is not recursive.
func (a *App) relevant(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := a.watchTree(watcher, event.Name); err != nil {
				a.logger.Warn("Failed to watch new directory.", "path", event.Name, "error", err)
			}
			return true
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	return manifest.IsManifestFile(filepath.Base(event.Name))
}

// watchTree adds root and every non-hidden directory below it.
func (a *App) watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if path == root {
				return watcher.Add(filepath.Dir(path))
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
