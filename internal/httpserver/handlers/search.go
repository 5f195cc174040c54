package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
	"github.com/MrSnakeDoc/versefinder/internal/metrics"
	"github.com/MrSnakeDoc/versefinder/internal/search"
)

// SearchVerses runs a keyword search. The body is a JSON array of keywords.
// Results come from the cache when possible; cache failures never fail the search.
func SearchVerses(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var keywords []string
		if err := decodeJSON(w, r, &keywords); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid keywords", err, d.Logger)
			return
		}
		if len(keywords) == 0 {
			writeError(w, http.StatusBadRequest, "Invalid keywords", search.ErrNoKeywords, d.Logger)
			return
		}

		if cached, ok := lookupCache(ctx, d, keywords); ok {
			writeJSON(w, http.StatusOK, cached, d.Logger)
			return
		}

		result, err := d.Engine.Search(ctx, keywords)
		if err != nil {
			writeClassified(w, err, d.Logger)
			return
		}

		d.Logger.Info("verse search",
			logger.Strings("keywords", keywords),
			logger.Int("verses", len(domain.RealVerses(result))))

		storeCache(ctx, d, keywords, result)
		writeJSON(w, http.StatusOK, result, d.Logger)
	}
}

func lookupCache(ctx context.Context, d deps.Deps, keywords []string) ([]domain.Verse, bool) {
	if d.Cache == nil {
		return nil, false
	}

	cached, ok, err := d.Cache.GetCachedSearch(ctx, keywords)
	switch {
	case err != nil:
		d.Metrics.CacheResult(metrics.CacheError)
		d.Logger.Warn("search cache lookup failed", logger.Error(err))
		return nil, false
	case !ok:
		d.Metrics.CacheResult(metrics.CacheMiss)
		return nil, false
	}

	d.Metrics.CacheResult(metrics.CacheHit)
	if err := d.Cache.RecordQuery(ctx, keywords); err != nil {
		d.Logger.Debug("failed to record query", logger.Error(err))
	}
	d.Logger.Debug("search cache hit", logger.Strings("keywords", keywords))
	return cached, true
}

// storeCache is best effort.
func storeCache(ctx context.Context, d deps.Deps, keywords []string, result []domain.Verse) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.CacheSearch(ctx, keywords, result, d.CacheTTL); err != nil {
		d.Logger.Warn("failed to cache search result", logger.Error(err))
	}
	if err := d.Cache.RecordQuery(ctx, keywords); err != nil {
		d.Logger.Debug("failed to record query", logger.Error(err))
	}
}
