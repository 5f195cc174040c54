package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
)

// WarmupReference is looked up once at startup to bring the store pages in.
const WarmupReference = "Genesis 1:1"

// Store is the read side Warmup touches.
type Store interface {
	domain.VerseStore
	Count(ctx context.Context) (int, error)
}

// Warmup runs one count and one reference lookup against store so the first
// user request does not pay for cold pages. Failures are logged, never returned.
func Warmup(ctx context.Context, store Store, log logger.Logger) {
	start := time.Now()

	n, err := store.Count(ctx)
	if err != nil {
		log.Warn("warmup count failed", logger.Error(err))
		return
	}

	_, err = store.FindByReference(ctx, WarmupReference)
	switch {
	case errors.Is(err, domain.ErrVerseNotFound):
		log.Debug("warmup reference not in corpus", logger.String("reference", WarmupReference))
	case err != nil:
		log.Warn("warmup lookup failed", logger.Error(err))
		return
	}

	log.Info("store warmed up",
		logger.Int("verses", n),
		logger.Duration("elapsed", time.Since(start)))
}
