// Package watcher reports debounced changes to files in one directory.
// vimgym uses it to reload user lesson files while the app is running.
package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/vimgym/internal/log"
)

// Config holds watcher options.
type Config struct {
	Dir        string
	Extensions []string // matched case-insensitively, with the dot
	Debounce   time.Duration
}

// DefaultConfig watches dir for YAML files with a 500ms debounce.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:        dir,
		Extensions: []string{".yaml", ".yml"},
		Debounce:   500 * time.Millisecond,
	}
}

// Watcher sends one signal per burst of relevant events.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cfg       Config
	onChange  chan struct{}
	done      chan struct{}
}

// New creates a watcher. Call Start to begin.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsw,
		cfg:       cfg,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches the directory and returns the change channel.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if err := w.fsWatcher.Add(w.cfg.Dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.cfg.Dir, err)
	}
	log.Debug(log.CatWatcher, "Watching directory", "dir", w.cfg.Dir)
	go w.loop()
	return w.onChange, nil
}

// Stop ends the watch and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watcher error", err, "dir", w.cfg.Dir)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.cfg.Extensions, strings.ToLower(filepath.Ext(ev.Name)))
}
