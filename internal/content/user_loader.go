package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zjrosen/vimgym/internal/cachemanager"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/pubsub"
)

// fileKey changes whenever a file is rewritten, so stale parses are never
// served.
type fileKey string

func keyFor(path string, info os.FileInfo) fileKey {
	return fileKey(fmt.Sprintf("%s@%d:%d", path, info.ModTime().UnixNano(), info.Size()))
}

type userLoader struct {
	parsed *cachemanager.ReadThroughCache[fileKey, Module, string]
}

func newUserLoader() *userLoader {
	cm := cachemanager.NewInMemoryCacheManager[fileKey, Module](
		"user-lessons", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	return &userLoader{
		parsed: cachemanager.NewReadThroughCache[fileKey, Module, string](cm, parseFile, false),
	}
}

func parseFile(_ context.Context, path string) (Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Module{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseModule(data, SourceUser, filepath.Base(path))
}

// load parses every lesson file in dir. Files that fail to parse are
// logged and skipped; their errors are joined into the returned error.
func (u *userLoader) load(ctx context.Context, dir string) ([]Module, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lesson dir: %w", err)
	}

	var (
		modules []Module
		errs    []error
	)
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := e.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m, err := u.parsed.Get(ctx, keyFor(path, info), path, cachemanager.DefaultExpiration)
		if err != nil {
			log.Warn(log.CatContent, "Skipping lesson file", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		modules = append(modules, m)
	}
	return modules, errors.Join(errs...)
}

// ReloadUser re-reads the user lesson directory and swaps in the result.
// Modules whose id clashes with an earlier module, or whose prerequisites
// are unknown, are dropped. The returned error describes skipped files;
// the good ones are still applied.
func (r *Registry) ReloadUser(ctx context.Context) ([]Module, error) {
	if r.userDir == "" {
		return nil, nil
	}
	loaded, loadErr := r.loader.load(ctx, r.userDir)

	r.mu.Lock()
	known := make(map[string]bool, len(r.builtin)+len(loaded))
	for _, m := range r.builtin {
		known[m.ID] = true
	}
	var kept []Module
	var errs []error
	if loadErr != nil {
		errs = append(errs, loadErr)
	}
	for _, m := range loaded {
		if known[m.ID] {
			errs = append(errs, fmt.Errorf("%s: module %s already exists", m.Path, m.ID))
			continue
		}
		if missing := slices.IndexFunc(m.Prerequisites, func(p string) bool { return !known[p] }); missing >= 0 {
			errs = append(errs, fmt.Errorf("%s: unknown prerequisite %s", m.Path, m.Prerequisites[missing]))
			continue
		}
		known[m.ID] = true
		kept = append(kept, m)
	}
	r.user = kept
	r.mu.Unlock()

	err := errors.Join(errs...)
	ids := make([]string, len(kept))
	for i, m := range kept {
		ids[i] = m.ID
	}
	log.Debug(log.CatContent, "User lessons reloaded", "dir", r.userDir, "modules", len(kept))
	r.reloads.Publish(pubsub.UpdatedEvent, Reload{Modules: ids, Err: err})
	return kept, err
}

// WatchUser reloads user lessons whenever changes fires, until ctx ends
// or changes is closed.
func (r *Registry) WatchUser(ctx context.Context, changes <-chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if _, err := r.ReloadUser(ctx); err != nil {
					log.Warn(log.CatContent, "Some user lessons failed to load", "error", err)
				}
			}
		}
	}()
}
