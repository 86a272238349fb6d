package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/actions"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/app"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/binding"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hass"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	chordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	serviceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// ErrInvalidConfig is returned by check when config.yaml has problems.
var ErrInvalidConfig = errors.New("config is invalid")

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var connect bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate config.yaml without registering hotkeys",
		Long: `Loads and validates config.yaml and lists the bindings it declares.
With --connect it also opens and authenticates a session with Home Assistant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("Config: "+cfg.ConfigFile))

			doc, err := actions.NewLoader(cfg.ConfigFile).Check()
			if err != nil {
				printProblems(out, err)
				return ErrInvalidConfig
			}

			bindings, err := binding.Compile(doc)
			if err != nil {
				printProblems(out, err)
				return ErrInvalidConfig
			}
			printBindings(out, doc, bindings)

			if !connect {
				return nil
			}

			connector := app.Connector(hass.Dialer{HandshakeTimeout: cfg.HandshakeTimeout, Secure: cfg.Secure})
			sess, err := session.Establish(cmd.Context(), connector, session.Options{
				Host:  doc.Host,
				Port:  doc.Port,
				Token: doc.Token,
			}, logger.New("error", false))
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(strings.ReplaceAll(err.Error(), "\n", ": ")))
				return err
			}
			defer func() { _ = sess.Close() }()
			fmt.Fprintln(out, serviceStyle.Render(fmt.Sprintf("Connected and authenticated to %s:%d", doc.Host, doc.Port)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&connect, "connect", false, "also authenticate against Home Assistant")
	return cmd
}

func printBindings(out io.Writer, doc *actions.Document, bindings []binding.Binding) {
	fmt.Fprintf(out, "Home Assistant: %s:%d\n", doc.Host, doc.Port)

	active := make(map[int]binding.Binding, len(bindings))
	for _, b := range bindings {
		active[b.Index] = b
	}

	// Entries are numbered from 1, as in validation errors.
	for i, e := range doc.Actions {
		b, ok := active[i]
		if !ok {
			fmt.Fprintf(out, "  #%d %s %s\n", i+1,
				dimStyle.Render(fmt.Sprintf("[%s, not bound]", e.Kind)),
				e.Description)
			continue
		}
		fmt.Fprintf(out, "  #%d %s %s %s\n", i+1,
			chordStyle.Render(b.Chord.String()),
			serviceStyle.Render(b.Domain+"."+b.Service),
			b.Description)
	}

	fmt.Fprintf(out, "%d binding(s) OK\n", len(bindings))
}

// printProblems lists every validation error separately when possible.
func printProblems(out io.Writer, err error) {
	problems := flatten(err)
	if len(problems) == 0 {
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
		return
	}
	for _, p := range problems {
		fmt.Fprintln(out, errorStyle.Render("  - "+p.Error()))
	}
}

func flatten(err error) []*actions.ValidationError {
	var out []*actions.ValidationError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if v, ok := e.(*actions.ValidationError); ok {
			out = append(out, v)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
