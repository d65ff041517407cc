package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/agentview/internal/agentcontrol"
	"github.com/rshade/agentview/internal/fetch"
	"github.com/rshade/agentview/internal/page"
	"github.com/rshade/agentview/internal/route"
	"github.com/rshade/agentview/internal/view"
)

// ViewState is the state of the agent page.
type ViewState int

const (
	// ViewStateLoading means there is nothing to show yet.
	ViewStateLoading ViewState = iota
	// ViewStateReady means agent data is on screen.
	ViewStateReady
	// ViewStateError means the fetch failed and there is no data to show.
	ViewStateError
	// ViewStateQuitting means the program is exiting.
	ViewStateQuitting
)

const (
	keyQuit    = "q"
	keyCtrlC   = "ctrl+c"
	keyRefresh = "r"
	keyReload  = "R"
)

// timeFormat is how the status bar shows when data was fetched.
const timeFormat = "15:04:05"

// agentFetchedMsg carries a resolved fetch state.
type agentFetchedMsg struct {
	state fetch.State
}

// AgentModel is the Bubble Tea model for the agent page.
type AgentModel struct {
	ctx     context.Context
	page    *page.Page
	src     route.Source
	req     page.Request
	control *agentcontrol.Control

	state   ViewState
	current fetch.State

	loading  *LoadingState
	viewport viewport.Model

	width  int
	height int
}

// NewAgentModel creates the agent page for the route src. Data already in
// the page's cache is shown immediately and refreshed by Init.
func NewAgentModel(ctx context.Context, p *page.Page, src route.Source) *AgentModel {
	req := p.Resolve(src)
	m := &AgentModel{
		ctx:      ctx,
		page:     p,
		src:      src,
		req:      req,
		control:  agentcontrol.New(req.Agent.Value),
		loading:  NewLoadingState(loadingMessage(req)),
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.apply(p.Cache().Peek(req.Key))
	return m
}

func loadingMessage(req page.Request) string {
	if !req.Ready() {
		return "Waiting for agent name..."
	}
	return fmt.Sprintf("Loading agent %s...", req.Agent.Value)
}

// Init starts the spinner and the first fetch.
func (m *AgentModel) Init() tea.Cmd {
	if !m.req.Ready() {
		return m.loading.Init()
	}
	m.current.Validating = true
	return tea.Batch(m.loading.Init(), m.loadCmd())
}

func (m *AgentModel) loadCmd() tea.Cmd {
	ctx, p, src := m.ctx, m.page, m.src
	return func() tea.Msg {
		return agentFetchedMsg{state: p.Load(ctx, src)}
	}
}

func (m *AgentModel) revalidateCmd() tea.Cmd {
	ch := m.page.Revalidate(m.ctx, m.src)
	return func() tea.Msg {
		return agentFetchedMsg{state: <-ch}
	}
}

// Update handles messages and updates the model state.
func (m *AgentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case agentFetchedMsg:
		m.apply(msg.state)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		return m, m.loading.Update(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *AgentModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyRefresh:
		if !m.req.Ready() || m.current.Validating {
			return m, nil
		}
		m.current.Validating = true
		m.current.Loading = !m.current.HasData()
		if m.current.Loading {
			m.current.Err = nil
			m.state = ViewStateLoading
		}
		return m, tea.Batch(m.loading.Init(), m.revalidateCmd())
	case keyReload:
		if !m.req.Ready() || m.current.Validating {
			return m, nil
		}
		m.page.Invalidate(m.src)
		m.current = fetch.State{Key: m.req.Key, Loading: true, Validating: true}
		m.state = ViewStateLoading
		return m, tea.Batch(m.loading.Init(), m.loadCmd())
	}

	if m.state != ViewStateReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// apply records a fetch state and derives the view state from it.
func (m *AgentModel) apply(s fetch.State) {
	if s.Key == "" {
		s.Key = m.req.Key
	}
	m.current = s
	m.state = view.Delegate[ViewState](s, view.Funcs[ViewState]{
		OnLoading: func() ViewState { return ViewStateLoading },
		OnError:   func(error) ViewState { return ViewStateError },
		OnSuccess: func(json.RawMessage) ViewState { return ViewStateReady },
	})
	if m.state == ViewStateReady {
		m.viewport.SetContent(m.control.Styled(s.Data))
	}
}

func (m *AgentModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, minHeight)
}

func (m *AgentModel) busy() bool {
	return m.current.Validating || m.state == ViewStateLoading
}

// State returns the current view state.
func (m *AgentModel) State() ViewState {
	return m.state
}

// Current returns the fetch state on screen.
func (m *AgentModel) Current() fetch.State {
	return m.current
}

// View renders the current view.
func (m *AgentModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(view.Delegate[string](m.current, styledRenderer{m: m}))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m *AgentModel) title() string {
	if !m.req.Ready() {
		return "Agent"
	}
	return "Agent: " + m.req.Agent.Value
}

func (m *AgentModel) statusBar() string {
	var parts []string
	if m.current.Validating && m.current.HasData() {
		parts = append(parts, m.loading.Spinner()+" refreshing")
	}
	if m.current.Err != nil && m.current.HasData() {
		parts = append(parts, WarningStyle.Render("refresh failed: "+m.current.Err.Error()))
	}
	if !m.current.UpdatedAt.IsZero() {
		parts = append(parts, "updated "+m.current.UpdatedAt.Local().Format(timeFormat))
	}
	parts = append(parts, "r refresh • R reload • q quit")
	return SubtleStyle.Render(strings.Join(parts, " • "))
}

// styledRenderer renders the body of the agent page.
type styledRenderer struct {
	m *AgentModel
}

func (r styledRenderer) Loading() string {
	return RenderLoading(r.m.loading)
}

func (r styledRenderer) Error(err error) string {
	return ErrorStyle.Render("Error: " + err.Error())
}

func (r styledRenderer) Success(json.RawMessage) string {
	return r.m.viewport.View()
}
