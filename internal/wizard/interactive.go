// Package wizard holds the interactive prompts used when a terminal is
// attached.
package wizard

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if both stdin and stdout are terminals, so a
// full-screen UI or a form can run.
func CanInteract() bool {
	return IsTerminal() && term.IsTerminal(int(os.Stdin.Fd()))
}
