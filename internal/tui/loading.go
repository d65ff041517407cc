package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadingState is a spinner with a message.
type LoadingState struct {
	spinner spinner.Model
	Message string
}

// NewLoadingState creates a LoadingState showing message.
func NewLoadingState(message string) *LoadingState {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = SpinnerStyle
	return &LoadingState{spinner: sp, Message: message}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its tick messages and ignores the rest.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(tick)
	return cmd
}

// Spinner returns the current spinner frame.
func (l *LoadingState) Spinner() string {
	return l.spinner.View()
}

// RenderLoading renders the spinner followed by the message.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return ""
	}
	return loading.Spinner() + " " + loading.Message
}
