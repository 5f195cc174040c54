package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/infra", handlers.Infra(d))
	restricted.Get("/metrics", handlers.Metrics(d))
}
