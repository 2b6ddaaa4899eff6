package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"vtp/internal/logger"
)

// DefaultDebounce groups bursts of file events into one reload
const DefaultDebounce = 300 * time.Millisecond

// SkipFunc reports whether a directory with this name is not watched
type SkipFunc func(name string) bool

// Watcher triggers a reload when a run script is created, removed, renamed
// or written anywhere below the workspace.
type Watcher struct {
	root       string
	scriptName string
	skip       SkipFunc
	log        logger.Logger

	// Debounce is the quiet period after the last event before onChange runs
	Debounce time.Duration

	fs   *fsnotify.Watcher
	done chan struct{}
}

// New creates a Watcher for root. scriptName is matched case-insensitively
// against the base name of changed files.
func New(root, scriptName string, skip SkipFunc, log logger.Logger) *Watcher {
	if skip == nil {
		skip = func(string) bool { return false }
	}
	return &Watcher{
		root:       root,
		scriptName: strings.ToLower(scriptName),
		skip:       skip,
		log:        log,
		Debounce:   DefaultDebounce,
		done:       make(chan struct{}),
	}
}

// Start adds the directory tree to the watch set and processes events in the
// background until ctx is done.
func (w *Watcher) Start(ctx context.Context, onChange func()) error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fs = fs

	if _, err := w.addTree(w.root); err != nil {
		_ = fs.Close()
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	go w.loop(ctx, onChange)
	return nil
}

// Done is closed once the watcher stopped
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context, onChange func()) {
	defer close(w.done)
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	trigger := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(w.Debounce)
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.handle(event) {
				trigger()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watcher error: %v", err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// handle updates the watch set and reports whether the event concerns a script
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.skip(filepath.Base(event.Name)) {
				return false
			}
			found, err := w.addTree(event.Name)
			if err != nil {
				w.log.Warnf("failed to watch %s: %v", event.Name, err)
			}
			return found
		}
	}

	if !w.isScript(event.Name) {
		return false
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
		w.log.Debugf("run script changed: %s (%s)", event.Name, event.Op)
		return true
	}
	return false
}

func (w *Watcher) isScript(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), w.scriptName)
}

// addTree watches dir and its subdirectories. It reports whether scripts
// already exist below dir.
func (w *Watcher) addTree(dir string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.isScript(path) {
				found = true
			}
			return nil
		}
		if path != dir && w.skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
	return found, err
}
