// Package watcher reloads long-running servers when their configuration
// files change on disk.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("insertthis.watcher")

// DefaultDebounce is the quiet period before a burst of events triggers a
// reload.
const DefaultDebounce = 500 * time.Millisecond

// Reloadable is implemented by components that can re-read their
// configuration.
type Reloadable interface {
	Reload(ctx context.Context) error
}

// ConfigWatcher watches one directory and calls Reload when any of the named
// files in it is written, created, removed or renamed.
type ConfigWatcher struct {
	reloadable   Reloadable
	watcher      *fsnotify.Watcher
	names        map[string]bool
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	startOnce    sync.Once
	stopOnce     sync.Once
	started      bool
}

// NewConfigWatcher watches dir for changes to the given file names. dir must
// exist.
func NewConfigWatcher(reloadable Reloadable, dir string, names ...string) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}

	return &ConfigWatcher{
		reloadable:   reloadable,
		watcher:      watcher,
		names:        nameSet,
		debounceTime: DefaultDebounce,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine. It returns immediately.
func (cw *ConfigWatcher) Start(ctx context.Context) {
	cw.startOnce.Do(func() {
		cw.started = true
		go cw.watch(ctx)
	})
}

// Stop stops the watcher and waits for its goroutine. Safe to call more than
// once, and without Start.
func (cw *ConfigWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopCh)
		// A Start after Stop is a no-op.
		cw.startOnce.Do(func() {})
		if cw.started {
			<-cw.doneCh
		}
		cw.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (cw *ConfigWatcher) watch(ctx context.Context) {
	defer close(cw.doneCh)

	var debounceTimer *time.Timer
	reloadCh := make(chan struct{}, 1)
	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-cw.stopCh:
			stopTimer()
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				stopTimer()
				return
			}
			if !cw.names[filepath.Base(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			log.Debugf("config event %s", event)
			stopTimer()
			debounceTimer = time.AfterFunc(cw.debounceTime, func() {
				select {
				case reloadCh <- struct{}{}:
				default:
				}
			})

		case <-reloadCh:
			cw.triggerReload(ctx)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				stopTimer()
				return
			}
			log.Warningf("config watcher error: %v", err)
		}
	}
}

// triggerReload reloads the component, keeping the old state on failure.
func (cw *ConfigWatcher) triggerReload(ctx context.Context) {
	start := time.Now()
	if err := cw.reloadable.Reload(ctx); err != nil {
		log.Errorf("config reload failed: %v (keeping old config)", err)
		return
	}
	log.Infof("config reloaded in %v", time.Since(start))
}
