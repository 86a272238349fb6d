package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/binding"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/history"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/session"
)

// BindingSource exposes the registered bindings.
type BindingSource interface {
	Bindings() []binding.Binding
	Lookup(index int) (binding.Binding, bool)
}

// HistoryReader exposes recorded dispatch outcomes.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Counters(ctx context.Context) (map[int]history.Counts, error)
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedCIDRS []string         // IPs allowed to reach the control server
	Session      *session.Slot    // published once startup succeeded
	Bindings     BindingSource    // registered bindings
	Trigger      func(binding.Binding)
	History      HistoryReader // nil when history is disabled
}
