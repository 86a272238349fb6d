// Package notify shows user-visible messages. The process normally runs
// without a console, so errors must reach the desktop.
package notify

import (
	"github.com/gen2brain/beeep"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/logger"
)

// Title is used for every message the app shows.
const Title = "Hass hotkeys"

// Notifier delivers messages to the user.
type Notifier interface {
	// Notify shows a non-blocking notification.
	Notify(title, message string) error
	// Alert shows an attention-grabbing message, used for fatal errors.
	Alert(title, message string) error
}

// Desktop uses the platform notification service.
type Desktop struct {
	Icon string // optional path to an icon
}

func (d Desktop) Notify(title, message string) error {
	return beeep.Notify(title, message, d.Icon)
}

func (d Desktop) Alert(title, message string) error {
	return beeep.Alert(title, message, d.Icon)
}

// Log writes messages to the logger only. It backs Desktop when the
// notification service is unavailable and is used when running headless.
type Log struct {
	Logger logger.Logger
}

func (l Log) Notify(title, message string) error {
	l.Logger.Warn(message, logger.String("title", title))
	return nil
}

func (l Log) Alert(title, message string) error {
	l.Logger.Error(message, logger.String("title", title))
	return nil
}

// Fallback tries Primary and reports to Secondary if it fails.
type Fallback struct {
	Primary   Notifier
	Secondary Notifier
}

func (f Fallback) Notify(title, message string) error {
	if err := f.Primary.Notify(title, message); err != nil {
		return f.Secondary.Notify(title, message)
	}
	return nil
}

func (f Fallback) Alert(title, message string) error {
	if err := f.Primary.Alert(title, message); err != nil {
		return f.Secondary.Alert(title, message)
	}
	return nil
}

// ErrorTitle is the title of error messages.
func ErrorTitle() string { return Title + " - Error" }
