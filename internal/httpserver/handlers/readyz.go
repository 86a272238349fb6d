package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/session"
)

type readyzResponse struct {
	Ready    bool           `json:"ready"`
	Bindings int            `json:"bindings"`
	Session  *session.Stats `json:"session,omitempty"`
}

// Readyz reports ready once a session has been published.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Bindings: len(d.Bindings.Bindings())}

		sess, ok := d.Session.Get()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		stats := sess.Stats()
		resp.Ready = true
		resp.Session = &stats
		writeJSON(w, http.StatusOK, resp)
	}
}
