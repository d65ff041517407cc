package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/rshade/agentview/internal/agentcontrol"
)

//go:embed templates/*
var templatesFS embed.FS

// PageData is what templates/agent.html renders.
type PageData struct {
	Title string
	Agent string

	// Status is the fetch variant: loading, error or success.
	Status string

	// RefreshInterval, in seconds, is set only on loading pages.
	RefreshInterval int

	Body template.HTML

	// Warning reports a failed refresh while stale data is shown.
	Warning string

	Validating bool
	UpdatedAt  time.Time
	RequestID  string
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": formatTime,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// htmlRenderer renders the body of the agent page.
type htmlRenderer struct {
	control *agentcontrol.Control
}

func (htmlRenderer) Loading() template.HTML {
	return template.HTML(`<p class="loading">Loading...</p>`)
}

func (htmlRenderer) Error(err error) template.HTML {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	//nolint:gosec // msg is escaped
	return template.HTML(`<p class="error">Failed to load agent: ` + template.HTMLEscapeString(msg) + `</p>`)
}

func (r htmlRenderer) Success(data json.RawMessage) template.HTML {
	return r.control.HTML(data)
}
