package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
	"github.com/MrSnakeDoc/versefinder/internal/sources/corpus"
)

// DefaultDebounce is how long the reloader waits for the corpus file to
// settle after a change before reloading it.
const DefaultDebounce = 500 * time.Millisecond

// CacheFlusher drops cached search results.
type CacheFlusher interface {
	FlushCache(ctx context.Context) error
}

// ReloadStatus describes the last reload attempt.
type ReloadStatus struct {
	At      time.Time `json:"at"`
	Trigger string    `json:"trigger"`
	Verses  int       `json:"verses"`
	Skipped int       `json:"skipped"`
	Error   string    `json:"error,omitempty"`
}

// CorpusReloader keeps the verse store in sync with the corpus file: on
// start, on a fixed interval, on manual trigger and, when watching, on
// file changes. Reloads run one at a time.
type CorpusReloader struct {
	loader        *corpus.Loader
	mapper        *corpus.Mapper
	store         domain.VerseRepository
	cache         CacheFlusher // nil when caching is disabled
	logger        logger.Logger
	interval      time.Duration
	watch         bool
	debounce      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu     sync.RWMutex
	status ReloadStatus
}

// NewCorpusReloader creates a new corpus reloader
func NewCorpusReloader(
	corpusFile string,
	store domain.VerseRepository,
	cache CacheFlusher,
	log logger.Logger,
	interval time.Duration,
	watch bool,
	manualTrigger chan struct{},
) *CorpusReloader {
	return &CorpusReloader{
		loader:        corpus.NewLoader(corpusFile),
		mapper:        corpus.NewMapper(),
		store:         store,
		cache:         cache,
		logger:        log,
		interval:      interval,
		watch:         watch,
		debounce:      DefaultDebounce,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the corpus once, then keeps reloading in the background until
// ctx is done or Stop is called.
func (cr *CorpusReloader) Start(ctx context.Context) error {
	if err := cr.reload(ctx, "startup"); err != nil {
		return fmt.Errorf("initial corpus load failed: %w", err)
	}

	var (
		fsw    *fsnotify.Watcher
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if cr.watch {
		w, err := cr.newWatcher()
		if err != nil {
			cr.logger.Warn("corpus file watching disabled", logger.Error(err))
		} else {
			fsw, events, errs = w, w.Events, w.Errors
		}
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		if fsw != nil {
			defer func() { _ = fsw.Close() }()
		}
		cr.loop(ctx, ticker.C, events, errs)
	}()

	return nil
}

func (cr *CorpusReloader) newWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file instead of writing it.
	dir := filepath.Dir(cr.loader.Path())
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	cr.logger.Info("watching corpus file", logger.String("path", cr.loader.Path()))
	return w, nil
}

func (cr *CorpusReloader) loop(ctx context.Context, tick <-chan time.Time, events <-chan fsnotify.Event, errs <-chan error) {
	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-tick:
			cr.reloadAndLog(ctx, "interval")

		case <-cr.manualTrigger:
			cr.logger.Info("manual corpus reload triggered")
			cr.reloadAndLog(ctx, "manual")

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !cr.isCorpusChange(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(cr.debounce)
			} else {
				timer.Reset(cr.debounce)
			}
			settled = timer.C

		case <-settled:
			settled = nil
			cr.reloadAndLog(ctx, "file_change")

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			cr.logger.Warn("corpus watcher error", logger.Error(err))

		case <-cr.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (cr *CorpusReloader) isCorpusChange(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(cr.loader.Path()) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Stop stops the reloader. It is safe to call more than once.
func (cr *CorpusReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Reload loads the corpus file and upserts it into the store.
func (cr *CorpusReloader) Reload(ctx context.Context) error {
	return cr.reload(ctx, "direct")
}

func (cr *CorpusReloader) reloadAndLog(ctx context.Context, trigger string) {
	if err := cr.reload(ctx, trigger); err != nil {
		cr.logger.Error("failed to reload corpus",
			logger.String("trigger", trigger),
			logger.Error(err))
	}
}

func (cr *CorpusReloader) reload(ctx context.Context, trigger string) error {
	status := ReloadStatus{At: time.Now(), Trigger: trigger}
	err := cr.apply(ctx, &status)
	if err != nil {
		status.Error = err.Error()
	}

	cr.mu.Lock()
	cr.status = status
	cr.mu.Unlock()
	return err
}

func (cr *CorpusReloader) apply(ctx context.Context, status *ReloadStatus) error {
	cr.logger.Info("reloading corpus", logger.String("path", cr.loader.Path()))

	file, err := cr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	res, err := cr.mapper.MapVerses(file)
	status.Skipped = res.SkippedTotal()
	if err != nil {
		return fmt.Errorf("failed to map corpus: %w", err)
	}
	for reason, n := range res.Skipped {
		cr.logger.Warn("skipped corpus entries",
			logger.String("reason", reason),
			logger.Int("count", n))
	}

	written, err := cr.store.UpsertVerses(ctx, res.Verses)
	if err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}
	status.Verses = written

	cr.logger.Info("corpus loaded",
		logger.Int("verses", written),
		logger.Int("skipped", status.Skipped))

	// Cached results may now be stale (best effort)
	if cr.cache != nil {
		if err := cr.cache.FlushCache(ctx); err != nil {
			cr.logger.Warn("failed to flush search cache", logger.Error(err))
		}
	}
	return nil
}

// Status returns the outcome of the last reload.
func (cr *CorpusReloader) Status() ReloadStatus {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.status
}
