package main

import (
	"github.com/MrSnakeDoc/hass-hotkeys/internal/cli"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook"
	"github.com/MrSnakeDoc/hass-hotkeys/internal/hook/gohook"
)

func main() {
	cli.Execute(func() hook.Source { return gohook.New() })
}
