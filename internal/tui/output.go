package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how the agent command presents its result.
type OutputMode int

const (
	// OutputModePlain writes uncolored text.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes lipgloss-styled text once and exits.
	OutputModeStyled
	// OutputModeInteractive runs the Bubble Tea program.
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// isTerminal reports whether stdout is a terminal. Replaced in tests.
//
//nolint:gochecknoglobals // test seam
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DetectOutputMode picks the output mode. plain and noColor (NO_COLOR set)
// win over everything; forceColor styles output even when stdout is not a
// terminal, but never makes it interactive.
func DetectOutputMode(forceColor, noColor, plain bool) OutputMode {
	if plain || noColor {
		return OutputModePlain
	}
	if isTerminal() {
		return OutputModeInteractive
	}
	if forceColor {
		return OutputModeStyled
	}
	return OutputModePlain
}
