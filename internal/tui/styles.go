package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for consistent styling.
const (
	ColorHeader  = lipgloss.Color("12")  // Blue
	ColorError   = lipgloss.Color("9")   // Red
	ColorWarning = lipgloss.Color("11")  // Yellow
	ColorSubtle  = lipgloss.Color("8")   // Gray
	ColorBorder  = lipgloss.Color("240") // Dark gray
	ColorSpinner = lipgloss.Color("13")  // Magenta
)

// Layout defaults used before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 24
	minHeight     = 5

	// chromeHeight is the number of lines taken by the header and status bar.
	chromeHeight = 4
)

var (
	// HeaderStyle renders the page title.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorBorder)

	// ErrorStyle renders fetch errors.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// WarningStyle renders non-fatal notices such as a failed refresh.
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// SubtleStyle renders help text and timestamps.
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorSubtle)

	// SpinnerStyle colors the loading spinner.
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorSpinner)
)
