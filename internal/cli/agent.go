package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/agentview/internal/agentcontrol"
	"github.com/rshade/agentview/internal/fetch"
	"github.com/rshade/agentview/internal/page"
	"github.com/rshade/agentview/internal/route"
	"github.com/rshade/agentview/internal/tui"
	"github.com/rshade/agentview/internal/view"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
)

// maxConcurrentFetches limits parallel agent fetches.
const maxConcurrentFetches = 8

// agentFlags holds the agent command flags.
type agentFlags struct {
	output string
	plain  bool
	color  bool
}

// NewAgentCmd creates the agent command.
func NewAgentCmd() *cobra.Command {
	var flags agentFlags

	cmd := &cobra.Command{
		Use:   "agent <name> [name...]",
		Short: "Show one or more agents",
		Long: `Fetches <API_URI>/api/agent/<name> for every name and renders the result.

With a single name on a terminal an interactive view opens; press r to refresh
and q to quit. Otherwise every agent is fetched once, concurrently, and printed.`,
		Example: `  # Interactive view
  agentview agent alpha

  # Plain text, for scripts
  agentview agent alpha --plain

  # Several agents as a JSON array
  agentview agent alpha beta --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output format: text or json (default from config)")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "plain text output, no colors or interactive view")
	cmd.Flags().BoolVar(&flags.color, "color", false, "force colored output when stdout is not a terminal")

	return cmd
}

func runAgent(cmd *cobra.Command, names []string, flags agentFlags) error {
	ctx := cmd.Context()
	a := appFromContext(ctx)

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return &ExitError{Code: ExitCodeUsage, Err: errors.New("agent name must not be empty")}
		}
	}

	format := flags.output
	if format == "" {
		format = a.cfg.Output.DefaultFormat
	}
	if format != outputText && format != outputJSON {
		return &ExitError{Code: ExitCodeUsage, Err: fmt.Errorf("unknown output format %q (want text or json)", format)}
	}

	p, err := newPage(a.cfg, "agentview/"+cmd.Root().Version)
	if err != nil {
		return err
	}

	mode := tui.DetectOutputMode(flags.color, noColorSet(a.lookupEnv), flags.plain)
	if format == outputText && mode == tui.OutputModeInteractive && len(names) == 1 {
		return runAgentTUI(ctx, p, names[0])
	}

	states, err := loadAgents(ctx, p, names)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == outputJSON {
		err = writeAgentsJSON(out, states)
	} else {
		writeAgentsText(out, names, states, mode == tui.OutputModeStyled)
	}
	if err != nil {
		return err
	}

	for i, s := range states {
		if s.Err != nil && s.HasData() {
			cmd.PrintErrf("Warning: showing cached data for %s%s: %v\n", names[i], fetchedAgo(s), s.Err)
		}
	}
	return agentsExitError(names, states)
}

// noColorSet reports whether NO_COLOR asks for uncolored output. Only a
// non-empty value counts (https://no-color.org).
func noColorSet(lookupEnv func(string) (string, bool)) bool {
	v, ok := lookupEnv("NO_COLOR")
	return ok && v != ""
}

// loadAgents fetches every name concurrently, in argument order.
func loadAgents(ctx context.Context, p *page.Page, names []string) ([]fetch.State, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	states := make([]fetch.State, len(names))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, name := range names {
		g.Go(func() error {
			states[i] = p.Load(gCtx, route.Values{page.Param: name})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug().Ctx(ctx).Int("agents", len(names)).Msg("agents loaded")
	return states, nil
}

func writeAgentsText(w io.Writer, names []string, states []fetch.State, styled bool) {
	for i, s := range states {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		control := agentcontrol.New(names[i])
		content := control.Text
		if styled {
			content = control.Styled
		}
		out := view.Delegate[string](s, view.Text{Content: content})
		_, _ = fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	}
}

func writeAgentsJSON(w io.Writer, states []fetch.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if len(states) == 1 {
		return enc.Encode(view.EnvelopeOf(states[0]))
	}
	envelopes := make([]view.Envelope, len(states))
	for i, s := range states {
		envelopes[i] = view.EnvelopeOf(s)
	}
	return enc.Encode(envelopes)
}

// fetchedAgo describes how old s.Data is, or "" when unknown.
func fetchedAgo(s fetch.State) string {
	if s.UpdatedAt.IsZero() {
		return ""
	}
	return fmt.Sprintf(" (fetched %s ago)", time.Since(s.UpdatedAt).Round(time.Second))
}

// agentsExitError reports agents that ended in the error variant.
func agentsExitError(names []string, states []fetch.State) error {
	var failed []string
	var first error
	for i, s := range states {
		if s.Status() == fetch.StatusError {
			failed = append(failed, names[i])
			if first == nil {
				first = s.Err
			}
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &ExitError{
		Code: ExitCodeError,
		Err:  fmt.Errorf("failed to load %s: %w", strings.Join(failed, ", "), first),
	}
}

// runAgentTUI runs the interactive view for one agent.
func runAgentTUI(ctx context.Context, p *page.Page, name string) error {
	model := tui.NewAgentModel(ctx, p, route.Values{page.Param: name})
	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("running interactive view: %w", err)
	}

	if m, ok := final.(*tui.AgentModel); ok && m.Current().Status() == fetch.StatusError {
		return &ExitError{Code: ExitCodeError, Err: m.Current().Err}
	}
	return nil
}
