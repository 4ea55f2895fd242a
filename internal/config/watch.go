package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// NetworksWatcher reloads the networks file when it changes on disk.  The
// control loop drains Updates between taps; only the latest reload is kept.
type NetworksWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *log.Logger
	updates chan Networks
}

// WatchNetworks watches the directory holding path, so editors that replace
// the file by rename are still seen.
func WatchNetworks(path string, logger *log.Logger) (*NetworksWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &NetworksWatcher{
		path:    filepath.Clean(path),
		watcher: fsw,
		logger:  logger,
		updates: make(chan Networks, 1),
	}, nil
}

func (w *NetworksWatcher) Updates() <-chan Networks { return w.updates }

// Run processes file events until ctx is cancelled or Close is called.
func (w *NetworksWatcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending = true
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("networks watch error: %v", err)

		case <-timerC:
			timerC = nil
			if !pending {
				continue
			}
			pending = false
			n, err := readNetworksFile(w.path)
			if err != nil {
				w.logger.Printf("networks reload failed, keeping current list: %v", err)
				continue
			}
			w.publish(n)
		}
	}
}

// publish replaces any undelivered update with n.
func (w *NetworksWatcher) publish(n Networks) {
	select {
	case <-w.updates:
	default:
	}
	w.updates <- n
	w.logger.Printf("networks reloaded count=%d", len(n.Networks))
}

func (w *NetworksWatcher) Close() error {
	return w.watcher.Close()
}
