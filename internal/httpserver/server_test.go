package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/binding"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/history"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/routes"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/keys"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/session"
)

type nopTransport struct{}

func (nopTransport) Authenticate(context.Context, string) error { return nil }
func (nopTransport) Close() error                              { return nil }
func (nopTransport) CallService(context.Context, string, string, any) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

type staticBindings []binding.Binding

func (s staticBindings) Bindings() []binding.Binding { return s }

func (s staticBindings) Lookup(index int) (binding.Binding, bool) {
	for _, b := range s {
		if b.Index == index {
			return b, true
		}
	}
	return binding.Binding{}, false
}

type fakeHistory struct {
	entries []history.Entry
	counts  map[int]history.Counts
	err     error
	limit   int
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]history.Entry, error) {
	f.limit = limit
	return f.entries, f.err
}

func (f *fakeHistory) Counters(context.Context) (map[int]history.Counts, error) {
	return f.counts, f.err
}

type recorder struct {
	mu  sync.Mutex
	got []binding.Binding
}

func (r *recorder) trigger(b binding.Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, b)
}

var testBindings = staticBindings{
	binding.New(0, "Toggle lab lights", keys.NewChord(keys.LeftControl, 0x0013),
		"light", "toggle", map[string]any{"entity_id": "light.lab_lights"}),
	binding.New(2, "Movie scene", keys.NewChord(keys.LeftAlt, keys.Space),
		"scene", "turn_on", map[string]any{"entity_id": "scene.movie"}),
}

func establishedSlot(t *testing.T) *session.Slot {
	t.Helper()
	connector := session.ConnectorFunc(func(context.Context, string, int) (session.Transport, error) {
		return nopTransport{}, nil
	})
	s, err := session.Establish(context.Background(), connector,
		session.Options{Host: "hass.local", Port: 8123, Token: "t"}, logger.New("error", false))
	require.NoError(t, err)

	slot := &session.Slot{}
	require.NoError(t, slot.Set(s))
	return slot
}

func newTestServer(slot *session.Slot, hist deps.HistoryReader, rec *recorder, cidrs []string) *Server {
	log := logger.New("error", false)
	d := deps.Deps{
		Logger:       log,
		StartTime:    time.Now().Add(-time.Minute),
		Version:      "v1.2.3",
		AllowedCIDRS: cidrs,
		Session:      slot,
		Bindings:     testBindings,
		Trigger:      rec.trigger,
		History:      hist,
	}
	return New("127.0.0.1:0", log, d)
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&session.Slot{}, nil, &recorder{}, nil)

	w := do(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])
	assert.GreaterOrEqual(t, body["uptime_seconds"].(float64), 59.0)
}

func TestReadyz(t *testing.T) {
	t.Run("before startup", func(t *testing.T) {
		s := newTestServer(&session.Slot{}, nil, &recorder{}, nil)
		w := do(t, s, http.MethodGet, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"ready":false`)
	})

	t.Run("session established", func(t *testing.T) {
		s := newTestServer(establishedSlot(t), nil, &recorder{}, nil)
		w := do(t, s, http.MethodGet, "/readyz")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Ready    bool          `json:"ready"`
			Bindings int           `json:"bindings"`
			Session  session.Stats `json:"session"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Ready)
		assert.Equal(t, 2, body.Bindings)
		assert.Equal(t, "hass.local", body.Session.Host)
	})
}

func TestListBindings(t *testing.T) {
	s := newTestServer(establishedSlot(t), nil, &recorder{}, nil)

	w := do(t, s, http.MethodGet, "/bindings")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"index":0,"description":"Toggle lab lights","chord":"LeftControl+R","domain":"light","service":"toggle","service_data":{"entity_id":"light.lab_lights"}},
		{"index":2,"description":"Movie scene","chord":"LeftAlt+Space","domain":"scene","service":"turn_on","service_data":{"entity_id":"scene.movie"}}
	]`, w.Body.String())
}

func TestTriggerBinding(t *testing.T) {
	tests := []struct {
		name   string
		slot   func(t *testing.T) *session.Slot
		path   string
		status int
		fired  int
	}{
		{"fires", establishedSlot, "/bindings/2/trigger", http.StatusAccepted, 1},
		{"unknown index", establishedSlot, "/bindings/1/trigger", http.StatusNotFound, 0},
		{"bad index", establishedSlot, "/bindings/x/trigger", http.StatusBadRequest, 0},
		{"no session", func(*testing.T) *session.Slot { return &session.Slot{} }, "/bindings/0/trigger", http.StatusServiceUnavailable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			s := newTestServer(tt.slot(t), nil, rec, nil)

			w := do(t, s, http.MethodPost, tt.path)
			assert.Equal(t, tt.status, w.Code)
			require.Len(t, rec.got, tt.fired)
			if tt.fired > 0 {
				assert.Equal(t, "scene", rec.got[0].Domain)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(establishedSlot(t), nil, &recorder{}, nil)
		w := do(t, s, http.MethodGet, "/history")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("entries and counters", func(t *testing.T) {
		h := &fakeHistory{
			entries: []history.Entry{{Index: 0, Domain: "light", Service: "toggle", OK: true}},
			counts:  map[int]history.Counts{0: {OK: 1}},
		}
		s := newTestServer(establishedSlot(t), h, &recorder{}, nil)

		w := do(t, s, http.MethodGet, "/history?limit=5")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, h.limit)

		var body struct {
			Entries  []history.Entry           `json:"entries"`
			Counters map[string]history.Counts `json:"counters"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Entries, 1)
		assert.Equal(t, history.Counts{OK: 1}, body.Counters["0"])
	})

	t.Run("bad limit", func(t *testing.T) {
		s := newTestServer(establishedSlot(t), &fakeHistory{}, &recorder{}, nil)
		w := do(t, s, http.MethodGet, "/history?limit=-3")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		s := newTestServer(establishedSlot(t), &fakeHistory{err: errors.New("redis down")}, &recorder{}, nil)
		w := do(t, s, http.MethodGet, "/history")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestAllowedCIDRS(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	denied := newTestServer(establishedSlot(t), nil, &recorder{}, []string{"127.0.0.1", "::1"})
	assert.Equal(t, http.StatusForbidden, do(t, denied, http.MethodGet, "/bindings").Code)
	assert.Equal(t, http.StatusForbidden, do(t, denied, http.MethodPost, "/bindings/0/trigger").Code)
	assert.Equal(t, http.StatusOK, do(t, denied, http.MethodGet, "/healthz").Code)

	allowed := newTestServer(establishedSlot(t), nil, &recorder{}, []string{"192.0.2.0/24"})
	assert.Equal(t, http.StatusOK, do(t, allowed, http.MethodGet, "/bindings").Code)
}

func TestTriggerRejectsBrowserRequests(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"cross-site page", "Origin", "https://evil.example", http.StatusForbidden},
		{"null origin", "Origin", "null", http.StatusForbidden},
		{"fetch metadata", "Sec-Fetch-Site", "cross-site", http.StatusForbidden},
		{"typed into the address bar", "Sec-Fetch-Site", "none", http.StatusAccepted},
		{"plain client", "", "", http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			s := newTestServer(establishedSlot(t), nil, rec, nil)

			req := httptest.NewRequest(http.MethodPost, "/bindings/0/trigger", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Empty(t, rec.got)
			}
		})
	}
}

func TestServeAndStop(t *testing.T) {
	s := newTestServer(&session.Slot{}, nil, &recorder{}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Shutdown before or after the listener is up both end Start cleanly.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop(ctx))
	assert.NoError(t, <-errCh)
}

func TestRouteGroups(t *testing.T) {
	assert.ElementsMatch(t, []string{"health", "bindings", "history"}, routes.Groups())
}
