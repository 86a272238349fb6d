package app

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/actions"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/binding"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/dispatch"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/notify"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/session"
)

// Options are the collaborators of the startup sequence.
type Options struct {
	ConfigPath string
	Connector  session.Connector
	Hook       hook.Registrar
	Notifier   notify.Notifier
	History    dispatch.Recorder // optional
	Logger     logger.Logger

	// ShutdownTimeout bounds how long Close waits for in-flight dispatches.
	ShutdownTimeout time.Duration
}

// DefaultShutdownTimeout applies when Options.ShutdownTimeout is unset.
const DefaultShutdownTimeout = 5 * time.Second

// App brings the hotkeys up in a fixed order: document, session, bindings.
// No chord is registered unless a session is already published.
type App struct {
	opts       Options
	logger     logger.Logger
	slot       *session.Slot
	registry   *binding.Registry
	dispatcher *dispatch.Dispatcher
}

// New creates an App. Nothing happens until Start.
func New(opts Options) *App {
	slot := &session.Slot{}
	return &App{
		opts:       opts,
		logger:     opts.Logger,
		slot:       slot,
		registry:   binding.NewRegistry(opts.Hook, opts.Logger),
		dispatcher: dispatch.New(slot, opts.Notifier, opts.History, opts.Logger),
	}
}

// Start runs the startup sequence once. Any failure is a *StartupError and
// leaves no chord registered.
func (a *App) Start(ctx context.Context) error {
	a.logger.Info("loading config", logger.String("path", a.opts.ConfigPath))
	doc, err := actions.NewLoader(a.opts.ConfigPath).Load()
	if err != nil {
		return &StartupError{Stage: StageConfig, Err: err}
	}

	sess, err := session.Establish(ctx, a.opts.Connector, session.Options{
		Host:  doc.Host,
		Port:  doc.Port,
		Token: doc.Token,
	}, a.logger)
	if err != nil {
		return &StartupError{Stage: StageSession, Err: err}
	}
	if err := a.slot.Set(sess); err != nil {
		_ = sess.Close()
		return &StartupError{Stage: StageSession, Err: err}
	}

	bindings, err := binding.Compile(doc)
	if err != nil {
		return &StartupError{Stage: StageBindings, Err: err}
	}
	if err := a.registry.RegisterAll(bindings, a.dispatcher.Trigger); err != nil {
		return &StartupError{Stage: StageBindings, Err: err}
	}

	a.logger.Info("hotkeys ready",
		logger.Int("bindings", len(bindings)),
		logger.Int("entries", len(doc.Actions)))
	return nil
}

// Slot holds the published session.
func (a *App) Slot() *session.Slot { return a.slot }

// Registry holds the registered bindings.
func (a *App) Registry() *binding.Registry { return a.registry }

// Dispatcher runs triggered bindings.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// Close cancels in-flight dispatches, waits for them up to the shutdown
// timeout and closes the session. It returns even if a call hangs.
func (a *App) Close() error {
	timeout := a.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.dispatcher.Shutdown(ctx); err != nil {
		a.logger.Warn("abandoning in-flight dispatches", logger.Error(err))
	}
	if sess, ok := a.slot.Get(); ok {
		return sess.Close()
	}
	return nil
}
