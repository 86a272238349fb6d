// Package hook turns raw key events from a global keyboard hook into chord
// callbacks.
package hook

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/keys"
)

// Registrar accepts chord registrations. cb is invoked when every key of
// chord is held down at the same time.
type Registrar interface {
	Register(chord keys.Chord, cb func()) error
}

// Event is a single key transition.
type Event struct {
	Code keys.KeyCode
	Down bool
}

// Source is a platform keyboard hook delivering raw events.
type Source interface {
	// Start begins capturing keyboard events.
	Start(ctx context.Context) (<-chan Event, error)
	// Stop terminates the hook and closes the event channel.
	Stop() error
}

type registration struct {
	chord keys.Chord
	cbs   []func()
}

// Matcher tracks which keys are held and fires chord callbacks.
//
// A chord fires on the key-down that completes it. Auto-repeat of an already
// held key does not fire again; the chord re-arms once any of its keys is
// released.
type Matcher struct {
	mu      sync.Mutex
	pressed map[keys.KeyCode]struct{}
	chords  map[string]*registration
	order   []string
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		pressed: make(map[keys.KeyCode]struct{}),
		chords:  make(map[string]*registration),
	}
}

// Register implements Registrar.
func (m *Matcher) Register(chord keys.Chord, cb func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := chord.Key()
	reg, ok := m.chords[k]
	if !ok {
		reg = &registration{chord: chord}
		m.chords[k] = reg
		m.order = append(m.order, k)
	}
	reg.cbs = append(reg.cbs, cb)
	return nil
}

// Handle feeds one event. Matching callbacks run synchronously on the
// caller's goroutine, outside the matcher lock.
func (m *Matcher) Handle(ev Event) {
	var fire []func()

	m.mu.Lock()
	if !ev.Down {
		delete(m.pressed, ev.Code)
		m.mu.Unlock()
		return
	}
	if _, held := m.pressed[ev.Code]; held {
		m.mu.Unlock()
		return
	}
	m.pressed[ev.Code] = struct{}{}

	for _, k := range m.order {
		reg := m.chords[k]
		if !reg.chord.Contains(ev.Code) || !m.allHeld(reg.chord) {
			continue
		}
		fire = append(fire, reg.cbs...)
	}
	m.mu.Unlock()

	for _, cb := range fire {
		cb()
	}
}

// Reset forgets every held key, e.g. after the hook restarts.
func (m *Matcher) Reset() {
	m.mu.Lock()
	m.pressed = make(map[keys.KeyCode]struct{})
	m.mu.Unlock()
}

// Len returns the number of distinct registered chords.
func (m *Matcher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chords)
}

func (m *Matcher) allHeld(c keys.Chord) bool {
	for _, k := range c {
		if _, ok := m.pressed[k]; !ok {
			return false
		}
	}
	return true
}

// Run pumps events from src into m until ctx is done or the source closes
// its channel. It is the listener loop and must never block on a callback
// that performs I/O; callers register callbacks that hand off work.
func Run(ctx context.Context, src Source, m *Matcher) error {
	events, err := src.Start(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = src.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.Handle(ev)
		}
	}
}
