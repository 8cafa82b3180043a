// Package reload implements C8: the debounced, transactional rebuild that
// turns on-disk config into a freshly installed configstore.Snapshot.
package reload

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/catalogresolver"
	"github.com/mockllm/mockllm/internal/configstore"
)

// Controller owns the debounce window around real rebuilds. A rebuild
// reads --config-dir off disk, runs the catalog resolver, and — only on
// success — swaps the store's live snapshot; on failure the previous
// snapshot stays active and the caller gets the full error list. Reloads
// are transactional: there is no partially-applied state.
type Controller struct {
	configDir string
	store     *configstore.Store
	debounce  time.Duration
	log       zerolog.Logger

	mu         sync.Mutex
	lastRealAt time.Time
	generation uint64
	reloading  bool
}

// NewController creates a reload controller bound to one config directory
// and store. debounce <= 0 uses a 500ms default.
func NewController(configDir string, store *configstore.Store, debounce time.Duration, log zerolog.Logger) *Controller {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Controller{configDir: configDir, store: store, debounce: debounce, log: log}
}

// Result is the outcome of one Reload call.
type Result struct {
	Reloaded bool
	Errors   []string
}

// Reload performs a debounced rebuild. If called again inside the debounce
// window of the last real rebuild, or while a rebuild is already in
// flight, it returns {Reloaded: false} without touching disk.
func (c *Controller) Reload() Result {
	c.mu.Lock()
	if c.reloading || (!c.lastRealAt.IsZero() && time.Since(c.lastRealAt) < c.debounce) {
		c.mu.Unlock()
		return Result{Reloaded: false}
	}
	c.reloading = true
	c.mu.Unlock()

	errs := c.rebuild()

	c.mu.Lock()
	c.reloading = false
	c.lastRealAt = time.Now()
	c.mu.Unlock()

	if len(errs) > 0 {
		return Result{Reloaded: false, Errors: errs}
	}
	return Result{Reloaded: true}
}

// rebuild performs the actual disk-read + resolve + swap. It is also used
// directly for the initial startup build (bypassing the debounce, since
// there is no "previous reload" yet to debounce against).
func (c *Controller) rebuild() []string {
	docs, err := configstore.Load(c.configDir)
	if err != nil {
		return []string{err.Error()}
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	snap, errs := catalogresolver.Build(docs, gen)
	if len(errs) > 0 {
		c.log.Warn().Strs("errors", errs).Msg("reload validation failed, keeping previous snapshot")
		return errs
	}

	c.store.Swap(snap)
	c.log.Info().Uint64("generation", gen).Int("models", len(snap.Models)).Msg("reload installed new snapshot")
	return nil
}

// Bootstrap runs the first, non-debounced rebuild at process startup. A
// non-nil error here should cause the process to exit non-zero.
func Bootstrap(configDir string, debounce time.Duration, log zerolog.Logger) (*configstore.Store, *Controller, error) {
	// NewStore requires an initial snapshot; seed it with an empty one so
	// the controller's rebuild has something to atomically replace.
	store := configstore.NewStore(&configstore.Snapshot{
		Models:      map[string]*configstore.Model{},
		Aliases:     map[string]*configstore.Alias{},
		ScriptCache: configstore.NewScriptCache(),
	})

	ctrl := NewController(configDir, store, debounce, log)
	if errs := ctrl.rebuild(); len(errs) > 0 {
		return nil, nil, apierror.WithErrors(apierror.ConfigError, "startup config validation failed", errs)
	}
	ctrl.mu.Lock()
	ctrl.lastRealAt = time.Now()
	ctrl.mu.Unlock()
	return store, ctrl, nil
}
