package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tailplane/config"
)

// DefaultInterval is the polling interval used when none is given.
const DefaultInterval = 5 * time.Second

// Loader produces the current configuration.
type Loader func(ctx context.Context) (config.Record, error)

// FileLoader loads and merges paths on every call.
func FileLoader(paths []string, opts ...config.Option) Loader {
	paths = append([]string(nil), paths...)
	return func(ctx context.Context) (config.Record, error) {
		if err := ctx.Err(); err != nil {
			return config.Record{}, err
		}
		return config.LoadFiles(paths, opts...)
	}
}

// Watcher keeps the last good configuration produced by a Loader.
type Watcher struct {
	mu       sync.RWMutex
	current  config.Record
	onChange []func(config.Record)
	onError  []func(error)

	reloadMu sync.Mutex
	loader   Loader
	interval time.Duration
	log      zerolog.Logger
}

// New creates a watcher. A non-positive interval uses DefaultInterval.
func New(loader Loader, interval time.Duration, logger zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		loader:   loader,
		interval: interval,
		log:      logger,
	}
}

// OnChange registers fn to run after the current record is replaced.
func (w *Watcher) OnChange(fn func(config.Record)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// OnError registers fn to run when a reload fails.
func (w *Watcher) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = append(w.onError, fn)
}

// Current returns the last good record, or the zero Record before the first
// successful reload.
func (w *Watcher) Current() config.Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Interval returns the polling interval.
func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// Reload runs one load cycle and reports whether the current record changed.
// On failure the previous record is kept.
func (w *Watcher) Reload(ctx context.Context) (bool, error) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	rec, err := w.loader(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("reload failed, keeping last good configuration")
		for _, fn := range w.errorHooks() {
			fn(err)
		}
		return false, err
	}

	w.mu.Lock()
	if rec.Equal(w.current) {
		w.mu.Unlock()
		return false, nil
	}
	w.current = rec
	hooks := append(([]func(config.Record))(nil), w.onChange...)
	w.mu.Unlock()

	w.log.Info().Str("digest", rec.Digest()).Int("patterns", len(rec.Content())).Msg("configuration changed")
	for _, fn := range hooks {
		fn(rec)
	}
	return true, nil
}

func (w *Watcher) errorHooks() []func(error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append(([]func(error))(nil), w.onError...)
}

// Start polls the loader until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		w.log.Debug().Dur("interval", w.interval).Msg("watcher started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				w.log.Debug().Msg("watcher stopped")
				return
			case <-ticker.C:
				_, _ = w.Reload(ctx)
			}
		}
	}()
}
