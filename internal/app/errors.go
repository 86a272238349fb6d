package app

import (
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/actions"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/notify"
)

// Stage names the startup step that failed.
type Stage string

const (
	StageConfig   Stage = "config"
	StageSession  Stage = "session"
	StageBindings Stage = "bindings"
)

// StartupError aborts the process before the steady state.
type StartupError struct {
	Stage Stage
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Dialog returns the title and message shown to the user. A first run is
// informational; everything else is an error.
func (e *StartupError) Dialog() (title, message string) {
	var firstRun *actions.FirstRunError
	if errors.As(e.Err, &firstRun) {
		return notify.Title, firstRun.Error()
	}
	return notify.ErrorTitle(), e.Err.Error()
}
