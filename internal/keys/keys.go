// Package keys maps key-name tokens used in the action document to the
// virtual key codes reported by the global keyboard hook.
package keys

import (
	"fmt"
	"sort"
	"strings"
)

// KeyCode is a virtual key code in the libuiohook code space.
type KeyCode uint16

// Parse resolves a key name (e.g. "LeftControl", "R") to its code.
// Exact names win; otherwise the lookup is case-insensitive.
func Parse(name string) (KeyCode, error) {
	if c, ok := byName[name]; ok {
		return c, nil
	}
	if c, ok := byLowerName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown key: %q", name)
}

// Name returns the canonical name of a code, or a hex placeholder.
func (c KeyCode) Name() string {
	if n, ok := byCode[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%04X", uint16(c))
}

func (c KeyCode) String() string { return c.Name() }

// Names returns every recognized key name, sorted.
func Names() []string {
	out := make([]string, 0, len(byName))
	for n := range byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Chord is a set of keys that must be held together.
// It is kept sorted and free of duplicates so equal sets compare equal.
type Chord []KeyCode

// NewChord builds a chord from codes in any order.
func NewChord(codes ...KeyCode) Chord {
	seen := make(map[KeyCode]struct{}, len(codes))
	c := make(Chord, 0, len(codes))
	for _, k := range codes {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		c = append(c, k)
	}
	sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	return c
}

// ParseChord resolves names into a chord.
func ParseChord(names []string) (Chord, error) {
	codes := make([]KeyCode, 0, len(names))
	for _, n := range names {
		c, err := Parse(n)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return NewChord(codes...), nil
}

// Contains reports whether k is part of the chord.
func (c Chord) Contains(k KeyCode) bool {
	i := sort.Search(len(c), func(i int) bool { return c[i] >= k })
	return i < len(c) && c[i] == k
}

// Equal reports whether both chords hold the same keys.
func (c Chord) Equal(o Chord) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	return true
}

// Key is a stable map key for the chord.
func (c Chord) Key() string {
	parts := make([]string, len(c))
	for i, k := range c {
		parts[i] = fmt.Sprintf("%04x", uint16(k))
	}
	return strings.Join(parts, "+")
}

// String names the keys, modifiers first.
func (c Chord) String() string {
	parts := make([]string, 0, len(c))
	for _, k := range c {
		if k.IsModifier() {
			parts = append(parts, k.Name())
		}
	}
	for _, k := range c {
		if !k.IsModifier() {
			parts = append(parts, k.Name())
		}
	}
	return strings.Join(parts, "+")
}

// IsModifier reports whether k is a Control, Shift, Alt or Windows key.
func (k KeyCode) IsModifier() bool {
	switch k {
	case LeftControl, RightControl, LeftShift, RightShift, LeftAlt, RightAlt, LeftWindows, RightWindows:
		return true
	}
	return false
}
