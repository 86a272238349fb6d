// Package binding compiles validated action entries into immutable chord
// bindings and installs them with the keyboard hook.
package binding

import (
	"fmt"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/actions"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/keys"
)

// Binding pairs a chord with a fully specified service call.
// It holds its own copy of the payload; the document may be discarded.
type Binding struct {
	Index       int // position of the source entry in the document
	Description string
	Chord       keys.Chord
	Domain      string
	Service     string
	payload     any
}

// Payload returns a deep copy of the service data.
func (b Binding) Payload() any {
	return clone(b.payload)
}

func (b Binding) String() string {
	return fmt.Sprintf("%s -> %s.%s", b.Chord, b.Domain, b.Service)
}

// New builds a binding, copying payload.
func New(index int, description string, chord keys.Chord, domain, service string, payload any) Binding {
	return Binding{
		Index:       index,
		Description: description,
		Chord:       chord,
		Domain:      domain,
		Service:     service,
		payload:     clone(payload),
	}
}

// Compile maps every call_service entry of a validated document to a
// binding, in document order. Entries of other kinds are skipped.
func Compile(doc *actions.Document) ([]Binding, error) {
	out := make([]Binding, 0, len(doc.Actions))
	for i, entry := range doc.Actions {
		if !entry.Executable() {
			continue
		}
		chord, err := keys.ParseChord(entry.Keys)
		if err != nil {
			return nil, fmt.Errorf("action #%d %q: %w", i+1, entry.Description, err)
		}
		out = append(out, New(i, entry.Description, chord, entry.Domain, entry.Service, entry.Payload))
	}
	return out, nil
}

// clone deep-copies the JSON-like values produced by the YAML decoder.
func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = clone(val)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = clone(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = clone(val)
		}
		return s
	default:
		return t
	}
}
