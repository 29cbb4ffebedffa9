package tankconfig

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Registry holds the current []TankConfig snapshot and optionally
// hot-reloads it from a filesystem watch. Readers call Configs()/Get()
// without ever observing a partially-updated list: reload builds a new
// slice off to the side and swaps an atomic.Pointer, resolving the
// reference's clear-then-repopulate race (spec.md §9) with a copy-on-write
// snapshot instead of the in-place mutation core.hpp does on its loop
// thread.
type Registry struct {
	path     string
	snapshot atomic.Pointer[[]TankConfig]

	mu        sync.Mutex
	onReload  []func([]TankConfig)
	watcher   *fsnotify.Watcher
	closeOnce sync.Once
}

// Load reads path once and returns a Registry serving that snapshot. A
// config-load failure at startup is fatal per spec.md §7; callers should
// abort the process on error.
func Load(path string) (*Registry, error) {
	cfgs, err := readConfigs(path)
	if err != nil {
		return nil, fmt.Errorf("tankconfig: load %s: %w", path, err)
	}
	r := &Registry{path: path}
	r.snapshot.Store(&cfgs)
	return r, nil
}

func readConfigs(path string) ([]TankConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfgs []TankConfig
	if err := json.Unmarshal(data, &cfgs); err != nil {
		return nil, err
	}
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("tankconfig: %s defines no mockups", path)
	}
	return cfgs, nil
}

// Configs returns the current immutable snapshot. Safe for concurrent use.
func (r *Registry) Configs() []TankConfig {
	return *r.snapshot.Load()
}

// Get returns the mockup at index and whether it exists.
func (r *Registry) Get(index int) (TankConfig, bool) {
	cfgs := r.Configs()
	if index < 0 || index >= len(cfgs) {
		return TankConfig{}, false
	}
	return cfgs[index], true
}

// OnReload registers a callback invoked with the new snapshot every time the
// file is successfully reloaded. Used to resend OutboundInit to connected
// tanks (§6.4, scenario S5).
func (r *Registry) OnReload(fn func([]TankConfig)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReload = append(r.onReload, fn)
}

// Watch starts an fsnotify watch on the config file's directory and reloads
// on write events. Reload failures are logged and the previous snapshot is
// retained (spec.md §7: "config reload failure: log error, retain previous
// config").
func (r *Registry) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tankconfig: watcher: %w", err)
	}
	dir := dirOf(r.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("tankconfig: watch %s: %w", dir, err)
	}
	r.watcher = watcher

	go r.watchLoop(watcher)
	return nil
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != r.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			r.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  tankconfig watch error: %v", err)
		}
	}
}

func (r *Registry) reload() {
	cfgs, err := readConfigs(r.path)
	if err != nil {
		log.Printf("⚠️  tankconfig reload failed, keeping previous config: %v", err)
		return
	}
	r.snapshot.Store(&cfgs)

	r.mu.Lock()
	callbacks := append([]func([]TankConfig){}, r.onReload...)
	r.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfgs)
	}
}

// Close stops the filesystem watch, if running.
func (r *Registry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.watcher != nil {
			err = r.watcher.Close()
		}
	})
	return err
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
