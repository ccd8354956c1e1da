package main

import (
	"github.com/pixelpoint/cli/cmd"

	// Display providers self-register; X11 carries the higher priority,
	// robotgo is the cross-platform fallback.
	_ "github.com/pixelpoint/cli/internal/display/robot"
	_ "github.com/pixelpoint/cli/internal/display/x11"
)

func main() {
	cmd.Execute()
}
