package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups []group

// Register adds a named route group. Names must be unique; a duplicate is a
// programming error and panics at init.
func Register(name string, reg Registrar, mws ...Middleware) {
	for _, g := range groups {
		if g.name == name {
			panic(fmt.Sprintf("❌ FATAL: route group %q registered twice", name))
		}
	}
	groups = append(groups, group{name: name, reg: reg, mws: mws})
}

// Groups lists registered group names in registration order.
func Groups() []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.name
	}
	return names
}

// RegisterAll mounts every group on r. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		target := r
		if len(g.mws) > 0 {
			target = r.With(g.mws...)
		}
		g.reg(target, d)
		if d.Logger != nil {
			d.Logger.Debugf("routes: mounted %s", g.name)
		}
	}
}
