package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/binding"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

type bindingResponse struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Chord       string `json:"chord"`
	Domain      string `json:"domain"`
	Service     string `json:"service"`
	ServiceData any    `json:"service_data"`
}

func toResponse(b binding.Binding) bindingResponse {
	return bindingResponse{
		Index:       b.Index,
		Description: b.Description,
		Chord:       b.Chord.String(),
		Domain:      b.Domain,
		Service:     b.Service,
		ServiceData: b.Payload(),
	}
}

// Bindings lists the registered bindings.
func Bindings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs := d.Bindings.Bindings()
		out := make([]bindingResponse, 0, len(bs))
		for _, b := range bs {
			out = append(out, toResponse(b))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type triggerResponse struct {
	Triggered bindingResponse `json:"triggered"`
}

// Trigger dispatches a binding as if its chord had been pressed.
func Trigger(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "index must be an integer")
			return
		}

		b, ok := d.Bindings.Lookup(index)
		if !ok {
			writeError(w, http.StatusNotFound, "no binding registered at index "+strconv.Itoa(index))
			return
		}

		if _, ok := d.Session.Get(); !ok {
			writeError(w, http.StatusServiceUnavailable, "no established session")
			return
		}

		d.Logger.Info("binding triggered via control server",
			logger.Int("index", index),
			logger.String("chord", b.Chord.String()),
			logger.String("remote_ip", r.RemoteAddr))
		d.Trigger(b)

		writeJSON(w, http.StatusAccepted, triggerResponse{Triggered: toResponse(b)})
	}
}
