package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

// RejectBrowserOrigin refuses requests sent by a web page. Browsers attach
// Origin to every POST and Sec-Fetch-Site to every request; scripts and
// curl send neither. A page the user visits can then not fire a binding
// through a control server on loopback.
func RejectBrowserOrigin(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			site := r.Header.Get("Sec-Fetch-Site")
			if origin != "" || (site != "" && site != "none") {
				log.Warn("control request from a browser rejected",
					logger.String("path", r.URL.Path),
					logger.String("origin", origin),
					logger.String("sec_fetch_site", site))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
