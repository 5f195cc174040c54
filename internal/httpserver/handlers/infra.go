package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
	redisstore "github.com/MrSnakeDoc/versefinder/internal/store/redis"
)

// topQueries is how many popular searches /infra lists.
const topQueries = 10

type componentStatus struct {
	OK           bool                    `json:"ok"`
	VersesLoaded *int                    `json:"verses_loaded,omitempty"`
	LastReload   string                  `json:"last_reload,omitempty"`
	Mode         string                  `json:"mode,omitempty"`
	Impact       string                  `json:"impact,omitempty"`
	Error        string                  `json:"error,omitempty"`
	TopQueries   []redisstore.QueryCount `json:"top_queries,omitempty"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"store":  checkStore(ctx, d),
			"cache":  checkCache(ctx, d),
			"corpus": checkCorpus(d),
		}

		response := infraResponse{
			ServingMode: determineServingMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServingMode(components map[string]componentStatus) string {
	// No verses = nothing to serve
	if store, exists := components["store"]; exists {
		if !store.OK || (store.VersesLoaded != nil && *store.VersesLoaded == 0) {
			return "critical"
		}
	}

	// Cache down = slower searches, same results
	if cache, exists := components["cache"]; exists && !cache.OK && cache.Mode != "disabled" {
		return "degraded"
	}

	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	n, err := d.Repository.Count(ctx)
	if err != nil {
		return componentStatus{OK: false, Mode: d.StoreKind, Error: err.Error()}
	}
	return componentStatus{OK: n > 0, Mode: d.StoreKind, VersesLoaded: &n}
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.Cache == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "search-cache-disabled",
		}
	}

	if err := d.Cache.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "search-cache-disabled",
			Error:  "timeout",
		}
	}

	top, err := d.Cache.TopQueries(ctx, topQueries)
	if err != nil {
		top = nil
	}
	return componentStatus{
		OK:         true,
		Mode:       "redis",
		Impact:     "search-cache-enabled",
		TopQueries: top,
	}
}

func checkCorpus(d deps.Deps) componentStatus {
	if d.Reloader == nil {
		return componentStatus{OK: true, Mode: "static", LastReload: "never"}
	}

	st := d.Reloader.Status()
	lastReload := "never"
	if !st.At.IsZero() {
		lastReload = st.At.Format("2006-01-02 15:04:05")
	}
	return componentStatus{
		OK:           st.Error == "",
		Mode:         st.Trigger,
		LastReload:   lastReload,
		VersesLoaded: &st.Verses,
		Error:        st.Error,
	}
}
