package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/mw"
)

func init() { Register("history", registerHistory) }

func registerHistory(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.Logger)).Get("/history", handlers.History(d))
}
