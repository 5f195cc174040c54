package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver/mw"
)

func init() { Register("verses", registerVerses) }

func registerVerses(r chi.Router, d deps.Deps) {
	r.Route("/api/verses", func(api chi.Router) {
		api.Use(
			mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
			mw.EnforceHost(d.AllowedHosts, d.Logger),
			mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.RateBurst,
				RefillPerIPPerMin: d.RatePerMin,
				MaxEntries:        10000,
				TrustProxy:        d.TrustProxy,
			}),
		)

		api.Post("/search", handlers.SearchVerses(d))
		api.Get("/reference", handlers.ReferenceQuery(d))
		api.Post("/reference", handlers.ReferenceLookup(d))
		api.Post("/references", handlers.ReferenceBatch(d))
		api.Post("/saved", handlers.MarkSaved(d))
		api.Post("/memorized", handlers.MarkMemorized(d))
	})
}
