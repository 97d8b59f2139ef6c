package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// HasTTY is true when stdout is a terminal.
var HasTTY = isatty.IsTerminal(os.Stdout.Fd())

// DefaultFormat picks the report format when none was asked for: a table for a
// person at a terminal, yaml for pipes and files.
func DefaultFormat(format string) string {
	if format != "" {
		return format
	}
	if HasTTY {
		return "table"
	}
	return "yaml"
}
