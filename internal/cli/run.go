package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/app"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/notify"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Listen for hotkeys (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHotkeys(cmd, opts)
		},
	}
}

func runHotkeys(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var files []string
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			files = append(files, cfg.LogFile)
		}
	}
	log := logger.New(cfg.LogLevel, cfg.PrettyLog, files...)
	defer func() { _ = log.Sync() }()

	log.Debug("settings loaded", logger.Any("config", cfg.Redacted()))

	n := notify.Fallback{
		Primary:   notify.Desktop{},
		Secondary: notify.Log{Logger: log},
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.NewProcess(cfg, log, n, opts.newSource()).Run(ctx)

	var startErr *app.StartupError
	if errors.As(err, &startErr) {
		title, msg := startErr.Dialog()
		log.Error("startup failed",
			logger.String("stage", string(startErr.Stage)),
			logger.Error(startErr.Err))
		if aerr := n.Alert(title, msg); aerr != nil {
			log.Warn("failed to show alert", logger.Error(aerr))
		}
	}
	return err
}
