// Package cli is the hass-hotkeys command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/config"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook"
)

// SourceFactory creates the global key event source used by run.
type SourceFactory func() hook.Source

type rootOptions struct {
	envFile   string
	newSource SourceFactory
}

// NewRootCmd builds the command tree. Without a subcommand it runs the hotkeys.
func NewRootCmd(newSource SourceFactory) *cobra.Command {
	opts := &rootOptions{newSource: newSource}

	root := &cobra.Command{
		Use:   "hass-hotkeys",
		Short: "Global keyboard shortcuts for Home Assistant",
		Long: `hass-hotkeys listens for key chords anywhere on the desktop and calls the
Home Assistant service bound to each one in config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHotkeys(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "optional .env file with HOTKEYS_* settings")

	root.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts),
		newPathCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute(newSource SourceFactory) {
	if err := NewRootCmd(newSource).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return cfg, nil
}
