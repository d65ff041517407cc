package agentcontrol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/rshade/agentview/internal/view"
)

// longTextThreshold is the length above which a setting value is treated
// as free text and rendered as markdown in HTML.
const longTextThreshold = 80

// Control renders agent payloads for one named agent.
type Control struct {
	Name string

	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a Control for the agent called name.
func New(name string) *Control {
	return &Control{
		Name:   name,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Text renders data as plain text.
func (c *Control) Text(data json.RawMessage) string {
	a := Parse(data)

	var b strings.Builder
	fmt.Fprintf(&b, "Agent: %s\n", c.Name)
	if a.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", a.Status)
	}

	if !a.Recognized {
		if a.Status == "" || hasExtraFields(a.Raw) {
			b.WriteString("\n")
			b.WriteString(view.PrettyJSON(a.Raw))
			b.WriteString("\n")
		}
		return b.String()
	}

	if len(a.Settings) > 0 {
		b.WriteString("\nSettings:\n")
		width := nameWidth(a.Settings)
		for _, s := range a.Settings {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, s.Name, singleLine(s.Value))
		}
	}

	enabled := a.EnabledCommands()
	fmt.Fprintf(&b, "\nCommands: %d of %d enabled\n", len(enabled), len(a.Commands))
	for _, name := range enabled {
		fmt.Fprintf(&b, "  - %s\n", name)
	}
	return b.String()
}

// Styled renders data for a color terminal.
func (c *Control) Styled(data json.RawMessage) string {
	a := Parse(data)

	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Name))
	if a.Status != "" {
		b.WriteString(" ")
		b.WriteString(badgeStyle.Render(a.Status))
	}
	b.WriteString("\n")

	if !a.Recognized {
		if a.Status == "" || hasExtraFields(a.Raw) {
			b.WriteString("\n")
			b.WriteString(rawStyle.Render(view.PrettyJSON(a.Raw)))
			b.WriteString("\n")
		}
		return b.String()
	}

	if len(a.Settings) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Settings"))
		b.WriteString("\n")
		width := nameWidth(a.Settings)
		for _, s := range a.Settings {
			value := singleLine(s.Value)
			if s.Masked {
				value = mutedStyle.Render(value)
			}
			b.WriteString("  ")
			b.WriteString(keyStyle.Width(width).Render(s.Name))
			b.WriteString("  ")
			b.WriteString(value)
			b.WriteString("\n")
		}
	}

	enabled := a.EnabledCommands()
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Commands (%d/%d enabled)", len(enabled), len(a.Commands))))
	b.WriteString("\n")
	for _, cmd := range a.Commands {
		if cmd.Enabled {
			b.WriteString(enabledStyle.Render("  ✓ " + cmd.Name))
		} else {
			b.WriteString(mutedStyle.Render("  · " + cmd.Name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// htmlSetting is a Setting prepared for the HTML template.
type htmlSetting struct {
	Name     string
	Value    string
	Markdown template.HTML
	Masked   bool
}

type htmlData struct {
	Name       string
	Status     string
	Recognized bool
	Raw        string
	Settings   []htmlSetting
	Commands   []Command
	Enabled    int
}

// HTML renders data as an HTML fragment. Long text settings are rendered as
// sanitized markdown; everything else is escaped by html/template.
func (c *Control) HTML(data json.RawMessage) template.HTML {
	a := Parse(data)

	d := htmlData{
		Name:       c.Name,
		Status:     a.Status,
		Recognized: a.Recognized,
		Commands:   a.Commands,
		Enabled:    len(a.EnabledCommands()),
	}
	if !a.Recognized && (a.Status == "" || hasExtraFields(a.Raw)) {
		d.Raw = view.PrettyJSON(a.Raw)
	}
	for _, s := range a.Settings {
		hs := htmlSetting{Name: s.Name, Value: s.Value, Masked: s.Masked}
		if !s.Masked && isLongText(s.Value) {
			hs.Markdown = c.markdown(s.Value)
		}
		d.Settings = append(d.Settings, hs)
	}

	var buf bytes.Buffer
	if err := agentTemplate.Execute(&buf, d); err != nil {
		return template.HTML(`<p class="error">` + template.HTMLEscapeString(err.Error()) + `</p>`)
	}
	//nolint:gosec // output of html/template
	return template.HTML(buf.String())
}

// markdown converts src to sanitized HTML, falling back to escaped text.
func (c *Control) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	//nolint:gosec // sanitized by bluemonday
	return template.HTML(c.policy.SanitizeBytes(buf.Bytes()))
}

func isLongText(s string) bool {
	return len(s) > longTextThreshold || strings.Contains(s, "\n")
}

// hasExtraFields reports whether an object payload carries more than a
// "status" field.
func hasExtraFields(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return true
	}
	delete(obj, "status")
	return len(obj) > 0
}

func nameWidth(settings []Setting) int {
	width := 0
	for _, s := range settings {
		width = max(width, lipgloss.Width(s.Name))
	}
	return width
}

func singleLine(s string) string {
	first, _, found := strings.Cut(s, "\n")
	if found {
		return first + " …"
	}
	return s
}

var agentTemplate = template.Must(template.New("agent").Parse(`<section class="agent">
<header><h1>{{.Name}}</h1>{{if .Status}} <span class="badge">{{.Status}}</span>{{end}}</header>
{{- if .Raw}}
<pre class="raw">{{.Raw}}</pre>
{{- end}}
{{- if .Settings}}
<h2>Settings</h2>
<dl class="settings">
{{- range .Settings}}
<dt>{{.Name}}</dt>
{{- if .Markdown}}<dd class="markdown">{{.Markdown}}</dd>{{else}}<dd{{if .Masked}} class="masked"{{end}}>{{.Value}}</dd>{{end}}
{{- end}}
</dl>
{{- end}}
{{- if .Recognized}}
<h2>Commands <small>{{.Enabled}}/{{len .Commands}} enabled</small></h2>
<ul class="commands">
{{- range .Commands}}
<li class="{{if .Enabled}}enabled{{else}}disabled{{end}}">{{.Name}}</li>
{{- end}}
</ul>
{{- end}}
</section>`))
