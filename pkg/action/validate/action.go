package validate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cmmoran/beanres/internal/validation"
	"github.com/cmmoran/beanres/pkg/workspace"
)

const DefaultDebounce = 300 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":    true,
	".idea":   true,
	".vscode": true,
	"target":  true,
	"build":   true,
}

// Run validates units, or every loaded unit when none are named.
func Run(w *workspace.Workspace, units ...string) ([]validation.Diagnostic, error) {
	if len(units) == 0 {
		units = w.UnitNames()
	}
	return validation.New(w.Engine(), slog.Default()).Validate(units...)
}

// Publish receives the result of every validation run in watch mode.
type Publish func(ds []validation.Diagnostic, err error)

// Watch validates once, then again after every relevant change under the
// workspace roots until ctx is done. Unit changes re-parse the units; source
// changes reload the type backend.
func Watch(ctx context.Context, w *workspace.Workspace, debounce time.Duration, publish Publish) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range w.WatchRoots() {
		if err := addWatchDirs(watcher, root); err != nil {
			return fmt.Errorf("failed to watch directories: %w", err)
		}
	}

	var (
		mu            sync.Mutex
		runMu         sync.Mutex // one run at a time
		debounceTimer *time.Timer
		pending       change
	)
	rerun := func() {
		runMu.Lock()
		defer runMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		c := pending
		pending = change{}
		mu.Unlock()
		publish(revalidate(ctx, w, c))
	}
	publish(Run(w))

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			// wait for a run already in flight
			runMu.Lock()
			runMu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			kind := classify(event)
			if kind == none {
				continue
			}
			mu.Lock()
			pending.add(kind)
			mu.Unlock()

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, rerun)

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Default().With("error", err).Warn("watcher error")
		}
	}
}

type changeKind int

const (
	none changeKind = iota
	unitChange
	sourceChange
)

type change struct {
	units, sources bool
}

func (c *change) add(k changeKind) {
	switch k {
	case unitChange:
		c.units = true
	case sourceChange:
		c.sources = true
	}
}

func revalidate(ctx context.Context, w *workspace.Workspace, c change) ([]validation.Diagnostic, error) {
	if c.units {
		if err := w.ReloadUnits(); err != nil {
			return nil, err
		}
	}
	if c.sources {
		if err := w.ReloadTypes(ctx); err != nil {
			return nil, err
		}
	}
	return Run(w)
}

func classify(event fsnotify.Event) changeKind {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return none
	}
	switch filepath.Ext(event.Name) {
	case ".xml":
		return unitChange
	case ".java", ".go":
		return sourceChange
	}
	return none
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		_ = addWatchDirs(watcher, path)
	}
}
