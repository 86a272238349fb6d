package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/history"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

const defaultHistoryLimit = 20

type historyResponse struct {
	Entries  []history.Entry           `json:"entries"`
	Counters map[string]history.Counts `json:"counters"`
}

// History returns recent dispatches, newest first. ?limit=N bounds the
// number of entries (0 means all kept entries).
func History(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.History == nil {
			writeError(w, http.StatusNotFound, "history is disabled")
			return
		}

		limit := defaultHistoryLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		entries, err := d.History.Recent(r.Context(), limit)
		if err != nil {
			d.Logger.Error("failed to read history", logger.Error(err))
			writeError(w, http.StatusBadGateway, "history unavailable")
			return
		}
		counts, err := d.History.Counters(r.Context())
		if err != nil {
			d.Logger.Error("failed to read history counters", logger.Error(err))
			writeError(w, http.StatusBadGateway, "history unavailable")
			return
		}

		// JSON object keys must be strings.
		byIndex := make(map[string]history.Counts, len(counts))
		for i, c := range counts {
			byIndex[strconv.Itoa(i)] = c
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		writeJSON(w, http.StatusOK, historyResponse{Entries: entries, Counters: byIndex})
	}
}
