// Package gohook provides the system-wide keyboard hook backed by
// libuiohook through github.com/robotn/gohook.
package gohook

import (
	"context"
	"sync"

	gh "github.com/robotn/gohook"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/keys"
)

// Source implements hook.Source. Only one may be started per process since
// libuiohook keeps global state.
type Source struct {
	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// New creates an idle hook source.
func New() *Source {
	return &Source{}
}

// Start installs the hook and translates its events. The returned channel is
// closed when Stop is called or ctx is done.
func (s *Source) Start(ctx context.Context) (<-chan hook.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := gh.Start()
	out := make(chan hook.Event, 64)
	s.done = make(chan struct{})
	s.running = true
	done := s.done

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case ev, ok := <-raw:
				if !ok {
					return
				}
				e, keep := translate(ev)
				if !keep {
					continue
				}
				select {
				case out <- e:
				case <-done:
					return
				}
			}
		}
	}()

	return out, nil
}

// Stop removes the hook.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	close(s.done)
	gh.End()
	return nil
}

// translate maps a gohook event to a key transition. KeyHold carries the
// virtual key code of a pressed key (repeating while held); KeyDown is the
// typed-character event and is only used when it carries a code.
func translate(ev gh.Event) (hook.Event, bool) {
	switch ev.Kind {
	case gh.KeyHold, gh.KeyDown:
		if ev.Keycode == 0 {
			return hook.Event{}, false
		}
		return hook.Event{Code: keys.KeyCode(ev.Keycode), Down: true}, true
	case gh.KeyUp:
		return hook.Event{Code: keys.KeyCode(ev.Keycode), Down: false}, true
	default:
		return hook.Event{}, false
	}
}
