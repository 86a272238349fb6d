package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/mw"
)

func init() { Register("bindings", registerBindings) }

func registerBindings(r chi.Router, d deps.Deps) {
	allow := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.Logger)
	r.With(allow).Get("/bindings", handlers.Bindings(d))
	r.With(allow, mw.RejectBrowserOrigin(d.Logger)).Post("/bindings/{index}/trigger", handlers.Trigger(d))
}
