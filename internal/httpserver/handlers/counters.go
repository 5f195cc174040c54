package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
)

type idsRequest struct {
	IDs []int64 `json:"ids"`
}

// MarkSaved bumps the saved counter of the posted verse ids.
func MarkSaved(d deps.Deps) http.HandlerFunc {
	return increment(d, "saved", d.Repository.IncrementSaved)
}

// MarkMemorized bumps the memorized counter of the posted verse ids.
func MarkMemorized(d deps.Deps) http.HandlerFunc {
	return increment(d, "memorized", d.Repository.IncrementMemorized)
}

func increment(d deps.Deps, counter string, bump func(ctx context.Context, ids ...int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req idsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid ids", err, d.Logger)
			return
		}
		if len(req.IDs) == 0 {
			writeError(w, http.StatusBadRequest, "Invalid ids", errors.New("at least one id is required"), d.Logger)
			return
		}

		ctx := r.Context()
		if err := bump(ctx, req.IDs...); err != nil {
			writeClassified(w, err, d.Logger)
			return
		}

		// Cached search results carry the old counters
		if d.Cache != nil {
			if err := d.Cache.FlushCache(ctx); err != nil {
				d.Logger.Warn("failed to flush search cache", logger.Error(err))
			}
		}

		d.Logger.Debug("verse counters updated",
			logger.String("counter", counter),
			logger.Int("ids", len(req.IDs)))
		w.WriteHeader(http.StatusNoContent)
	}
}
