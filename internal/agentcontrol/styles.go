package agentcontrol

import "github.com/charmbracelet/lipgloss"

// Color constants for the styled renderer.
const (
	ColorTitle   = lipgloss.Color("12")  // Blue
	ColorSection = lipgloss.Color("14")  // Cyan
	ColorEnabled = lipgloss.Color("10")  // Green
	ColorMuted   = lipgloss.Color("8")   // Gray
	ColorBadgeFG = lipgloss.Color("0")   // Black
	ColorBadgeBG = lipgloss.Color("11")  // Yellow
	ColorKey     = lipgloss.Color("252") // Light gray
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorTitle)
	badgeStyle   = lipgloss.NewStyle().Foreground(ColorBadgeFG).Background(ColorBadgeBG).Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(ColorSection)
	keyStyle     = lipgloss.NewStyle().Foreground(ColorKey)
	enabledStyle = lipgloss.NewStyle().Foreground(ColorEnabled)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	rawStyle     = lipgloss.NewStyle().Foreground(ColorKey)
)
