package binding

import (
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

// DispatchFunc is invoked with the binding whose chord was pressed.
type DispatchFunc func(Binding)

// Registry installs bindings with the hook. Registrations are never
// undone for the life of the process.
type Registry struct {
	hook   hook.Registrar
	logger logger.Logger

	mu       sync.RWMutex
	bindings []Binding
}

// NewRegistry creates a registry over a hook.
func NewRegistry(h hook.Registrar, log logger.Logger) *Registry {
	return &Registry{hook: h, logger: log}
}

// Register installs b so that fn(b) runs when its chord is held.
func (r *Registry) Register(b Binding, fn DispatchFunc) error {
	if err := r.hook.Register(b.Chord, func() { fn(b) }); err != nil {
		return fmt.Errorf("register %s: %w", b.Chord, err)
	}

	r.mu.Lock()
	r.bindings = append(r.bindings, b)
	r.mu.Unlock()

	r.logger.Info("hotkey registered",
		logger.String("chord", b.Chord.String()),
		logger.String("call", b.Domain+"."+b.Service),
		logger.String("description", b.Description))
	return nil
}

// RegisterAll registers each binding once, in order.
func (r *Registry) RegisterAll(bs []Binding, fn DispatchFunc) error {
	for _, b := range bs {
		if err := r.Register(b, fn); err != nil {
			return err
		}
	}
	return nil
}

// Bindings returns the registered bindings in registration order.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// Lookup finds a registered binding by its document index.
func (r *Registry) Lookup(index int) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bindings {
		if b.Index == index {
			return b, true
		}
	}
	return Binding{}, false
}
