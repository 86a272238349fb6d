package binding

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/actions"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/keys"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

func entry(kind, desc, domain, service string, keyNames ...string) actions.Entry {
	return actions.Entry{
		Kind:        kind,
		Description: desc,
		Keys:        keyNames,
		Domain:      domain,
		Service:     service,
		Payload:     map[string]any{"entity_id": domain + "." + desc},
	}
}

func TestCompileKeepsOrderAndSkipsInert(t *testing.T) {
	doc := &actions.Document{Actions: []actions.Entry{
		entry(actions.KindCallService, "a", "light", "toggle", "LeftControl", "A"),
		entry("open_browser", "b", "", "", "LeftControl", "B"),
		entry(actions.KindCallService, "c", "switch", "turn_on", "LeftControl", "C"),
		entry(actions.KindCallService, "d", "scene", "turn_on", "LeftControl", "D"),
	}}

	bs, err := Compile(doc)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(bs) != 3 {
		t.Fatalf("len = %d, want 3", len(bs))
	}

	wantDesc := []string{"a", "c", "d"}
	wantIdx := []int{0, 2, 3}
	for i, b := range bs {
		if b.Description != wantDesc[i] || b.Index != wantIdx[i] {
			t.Errorf("binding %d = %+v, want %s at %d", i, b, wantDesc[i], wantIdx[i])
		}
	}
}

func TestCompileScenarioA(t *testing.T) {
	doc := &actions.Document{Actions: []actions.Entry{{
		Kind:    actions.KindCallService,
		Keys:    []string{"LeftControl", "R"},
		Domain:  "light",
		Service: "toggle",
		Payload: map[string]any{"entity_id": "light.lab_lights"},
	}}}

	bs, err := Compile(doc)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(bs) != 1 {
		t.Fatalf("len = %d, want 1", len(bs))
	}
	want := keys.NewChord(keys.LeftControl, 0x0013)
	if !bs[0].Chord.Equal(want) {
		t.Errorf("Chord = %v, want %v", bs[0].Chord, want)
	}
	if bs[0].Domain != "light" || bs[0].Service != "toggle" {
		t.Errorf("call = %s.%s", bs[0].Domain, bs[0].Service)
	}
}

func TestBindingPayloadIsIsolated(t *testing.T) {
	src := map[string]any{
		"entity_id": []any{"light.a", "light.b"},
		"nested":    map[string]any{"brightness": 128},
	}
	doc := &actions.Document{Actions: []actions.Entry{{
		Kind: actions.KindCallService, Keys: []string{"F1"}, Domain: "light", Service: "turn_on", Payload: src,
	}}}

	bs, err := Compile(doc)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	// Mutating the document after compile must not leak into the binding.
	src["nested"].(map[string]any)["brightness"] = 0
	src["entity_id"].([]any)[0] = "light.z"

	p := bs[0].Payload().(map[string]any)
	if p["nested"].(map[string]any)["brightness"] != 128 {
		t.Error("binding payload changed with the document")
	}
	if p["entity_id"].([]any)[0] != "light.a" {
		t.Error("binding payload slice changed with the document")
	}

	// Nor may a caller mutate the binding through Payload().
	p["extra"] = true
	if _, ok := bs[0].Payload().(map[string]any)["extra"]; ok {
		t.Error("Payload() returned shared state")
	}
}

func TestCompileRejectsUnknownKey(t *testing.T) {
	doc := &actions.Document{Actions: []actions.Entry{
		entry(actions.KindCallService, "bad", "light", "toggle", "Hyper"),
	}}
	if _, err := Compile(doc); err == nil {
		t.Error("Compile() should fail on an unknown key")
	}
}

type recordingHook struct {
	chords []keys.Chord
	cbs    []func()
	err    error
}

func (h *recordingHook) Register(c keys.Chord, cb func()) error {
	if h.err != nil {
		return h.err
	}
	h.chords = append(h.chords, c)
	h.cbs = append(h.cbs, cb)
	return nil
}

func TestRegistryRegisterAll(t *testing.T) {
	h := &recordingHook{}
	r := NewRegistry(h, logger.New("error", false))

	bs := []Binding{
		New(0, "a", keys.NewChord(keys.LeftControl, 0x0013), "light", "toggle", map[string]any{}),
		New(1, "b", keys.NewChord(keys.LeftAlt, keys.Space), "switch", "toggle", map[string]any{}),
	}

	var got []string
	if err := r.RegisterAll(bs, func(b Binding) { got = append(got, b.Description) }); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	if len(h.chords) != 2 {
		t.Fatalf("hook saw %d registrations, want 2", len(h.chords))
	}

	h.cbs[1]()
	h.cbs[0]()
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("dispatched = %v", got)
	}

	if len(r.Bindings()) != 2 {
		t.Errorf("Bindings() len = %d", len(r.Bindings()))
	}
	if b, ok := r.Lookup(1); !ok || b.Description != "b" {
		t.Errorf("Lookup(1) = %+v, %v", b, ok)
	}
	if _, ok := r.Lookup(7); ok {
		t.Error("Lookup(7) should miss")
	}
}

func TestRegistryHookError(t *testing.T) {
	h := &recordingHook{err: errors.New("hook unavailable")}
	r := NewRegistry(h, logger.New("error", false))

	err := r.Register(New(0, "a", keys.NewChord(keys.KeyCode(0x003B)), "x", "y", nil), func(Binding) {})
	if err == nil {
		t.Fatal("Register() should surface hook errors")
	}
	if len(r.Bindings()) != 0 {
		t.Error("failed registration was recorded")
	}
}

func TestRegistryWithMatcher(t *testing.T) {
	m := hook.NewMatcher()
	r := NewRegistry(m, logger.New("error", false))

	fired := 0
	b := New(0, "a", keys.NewChord(keys.LeftControl, 0x0013), "light", "toggle", nil)
	if err := r.Register(b, func(Binding) { fired++ }); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	m.Handle(hook.Event{Code: keys.LeftControl, Down: true})
	m.Handle(hook.Event{Code: 0x0013, Down: true})
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestPayloadIsJSONEncodable(t *testing.T) {
	b := New(0, "lab", keys.NewChord(keys.LeftControl, 0x0013), "light", "turn_on",
		map[any]any{"entity_id": "light.lab_lights", "rgb_color": []any{255, 0, 0}, 7: map[any]any{"x": 1}})

	raw, err := json.Marshal(b.Payload())
	if err != nil {
		t.Fatalf("json.Marshal(Payload()) error = %v", err)
	}
	want := `{"7":{"x":1},"entity_id":"light.lab_lights","rgb_color":[255,0,0]}`
	if string(raw) != want {
		t.Errorf("payload = %s, want %s", raw, want)
	}
}
