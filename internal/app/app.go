package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/actions"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/config"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hass"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/history"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/notify"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/redis"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/session"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/utils"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/version"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/watch"
)

// ErrListenerStopped is returned when the key listener ends on its own.
var ErrListenerStopped = errors.New("key listener stopped")

// Process is the running program: startup, then listening until the
// context ends.
type Process struct {
	cfg       *config.Config
	logger    logger.Logger
	notifier  notify.Notifier
	source    hook.Source
	connector session.Connector
}

// NewProcess wires a process. src delivers raw key events.
func NewProcess(cfg *config.Config, log logger.Logger, n notify.Notifier, src hook.Source) *Process {
	return &Process{
		cfg:      cfg,
		logger:   log,
		notifier: n,
		source:   src,
		connector: Connector(hass.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
			Secure:           cfg.Secure,
		}),
	}
}

// Connector dials Home Assistant for the session.
func Connector(d hass.Dialer) session.Connector {
	return session.ConnectorFunc(func(ctx context.Context, host string, port int) (session.Transport, error) {
		c, err := d.Dial(ctx, host, port)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// Run starts the hotkeys and blocks until ctx is done or a component fails.
// Startup failures are returned as *StartupError.
func (p *Process) Run(ctx context.Context) error {
	p.logger.Infof("Starting Hass hotkeys %s", version.String())

	matcher := hook.NewMatcher()
	a := New(Options{
		ConfigPath: p.cfg.ConfigFile,
		Connector:  p.connector,
		Hook:       matcher,
		Notifier:   p.notifier,
		Logger:     p.logger,

		ShutdownTimeout: p.cfg.ShutdownTimeout,
	})

	// Dispatches may still record history while closing, so Redis goes last.
	var redisClient *goredis.Client
	defer func() {
		if err := a.Close(); err != nil {
			p.logger.Warn("failed to close session", logger.Error(err))
		}
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			p.logger.Warnf("failed to close redis: %v", err)
		}
	}()

	if err := a.Start(ctx); err != nil {
		return err
	}

	// History is opened once startup succeeded so a slow Redis never delays
	// the startup dialogs. No chord can fire before the listener runs.
	var store *history.Store
	redisClient, store = p.openHistory(ctx)
	if store != nil {
		a.Dispatcher().SetRecorder(store)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)

	var server *httpserver.Server
	if p.cfg.ControlEnabled() {
		server = p.controlServer(a, store)
		go func() {
			if err := server.Start(); err != nil {
				errCh <- fmt.Errorf("control server error: %w", err)
			}
		}()
	}

	if p.cfg.WatchConfig {
		w := watch.New(p.cfg.ConfigFile, 0, p.logger, p.configChanged)
		go func() {
			if err := w.Run(ctx); err != nil {
				// Watching is a convenience; hotkeys keep working.
				p.logger.Warn("config watcher stopped", logger.Error(err))
			}
		}()
	}

	go func() {
		if err := hook.Run(ctx, p.source, matcher); err != nil {
			errCh <- fmt.Errorf("key listener: %w", err)
			return
		}
		if ctx.Err() == nil {
			errCh <- ErrListenerStopped
		}
	}()

	p.logger.Info("listening for hotkeys")

	var runErr error
	select {
	case <-ctx.Done():
		p.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
		p.logger.Error("stopping after component failure", logger.Error(runErr))
	}
	cancel()

	if server != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), p.cfg.ShutdownTimeout)
		defer stop()
		if err := server.Stop(shutdownCtx); err != nil {
			p.logger.Warn("failed to stop control server", logger.Error(err))
		}
	}

	if runErr == nil {
		p.logger.Info("✅ Hass hotkeys stopped cleanly")
	}
	return runErr
}

// openHistory connects to Redis when configured. History is optional: a
// connection failure is logged and the process continues without it.
func (p *Process) openHistory(ctx context.Context) (*goredis.Client, *history.Store) {
	if !p.cfg.HistoryEnabled() {
		return nil, nil
	}

	client, err := redis.Connect(ctx, redis.ConnectOptions{
		Addr:           p.cfg.RedisAddr,
		User:           p.cfg.RedisUser,
		Password:       p.cfg.RedisPassword,
		RedisDB:        p.cfg.RedisDB,
		DialTimeout:    p.cfg.RedisDT,
		ReadTimeout:    p.cfg.RedisRT,
		WriteTimeout:   p.cfg.RedisWT,
		PoolSize:       p.cfg.RedisPoolSize,
		ConnectTimeout: p.cfg.RedisConnectTimeout,
		RetryInterval:  p.cfg.RedisRetryInterval,
		MaxWait:        p.cfg.RedisMaxWait,
		PingTimeout:    p.cfg.RedisPingTimeout,
		WarnThreshold:  p.cfg.RedisWarnThreshold,
	}, p.logger)
	if err != nil {
		p.logger.Warn("dispatch history disabled", logger.Error(err))
		return nil, nil
	}
	return client, history.NewStore(client, p.cfg.HistorySize)
}

func (p *Process) controlServer(a *App, store *history.Store) *httpserver.Server {
	if bad := utils.Invalid(p.cfg.AllowedCIDRS); len(bad) > 0 {
		p.logger.Warn("ignoring invalid allowed CIDRs", logger.Strings("entries", bad))
	}

	d := deps.Deps{
		Logger:       p.logger,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedCIDRS: p.cfg.AllowedCIDRS,
		Session:      a.Slot(),
		Bindings:     a.Registry(),
		Trigger:      a.Dispatcher().Trigger,
	}
	if store != nil {
		d.History = store
	}
	return httpserver.New(p.cfg.ListenAddr, p.logger, d)
}

// configChanged tells the user an edit needs a restart, or why it would
// fail to load.
func (p *Process) configChanged(path string) {
	var err error
	if _, cerr := actions.NewLoader(path).Check(); cerr != nil {
		err = p.notifier.Notify(notify.ErrorTitle(), fmt.Sprintf("Config file changed but is invalid:\n%v", cerr))
	} else {
		err = p.notifier.Notify(notify.Title, "Config file changed, restart Hass hotkeys to apply it.")
	}
	if err != nil {
		p.logger.Warn("failed to show notification", logger.Error(err))
	}
}
