package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
)

// Metrics serves the Prometheus registry, or 404 when metrics are off.
func Metrics(d deps.Deps) http.HandlerFunc {
	if d.Metrics == nil {
		return http.NotFound
	}
	h := d.Metrics.Handler()
	return h.ServeHTTP
}
