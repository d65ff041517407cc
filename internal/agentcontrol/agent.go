// Package agentcontrol renders an AGiXT agent payload as text, styled
// terminal output, or an HTML fragment.
package agentcontrol

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// maskedValue replaces the value of settings that look like credentials.
const maskedValue = "********"

// sensitiveSuffixes mark setting names whose values are never displayed.
var sensitiveSuffixes = []string{"_KEY", "_SECRET", "_TOKEN", "_PASSWORD"}

// Setting is one agent setting with its display value.
type Setting struct {
	Name  string
	Value string
	// Masked is true when Value was replaced because Name looks like a
	// credential.
	Masked bool
}

// Command is one agent command and whether it is enabled.
type Command struct {
	Name    string
	Enabled bool
}

// Agent is the parsed form of an agent payload.
type Agent struct {
	// Status is the top-level "status" field, if the payload has one.
	Status string

	Settings []Setting
	Commands []Command

	// Recognized is false when the payload had neither settings nor
	// commands; renderers then fall back to Raw.
	Recognized bool

	Raw json.RawMessage
}

// Parse reads an agent payload. It accepts {"agent": {...}}, a flat
// {"settings": ..., "commands": ...} object, or any other JSON, which is
// kept only as Raw.
func Parse(data json.RawMessage) Agent {
	a := Agent{Raw: data}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return a
	}

	a.Status = stringField(top, "status")

	body := top
	var nested map[string]json.RawMessage
	if raw, ok := top["agent"]; ok && json.Unmarshal(raw, &nested) == nil && nested != nil {
		body = nested
		if a.Status == "" {
			a.Status = stringField(nested, "status")
		}
	}

	settings, hasSettings := objectField(body, "settings")
	commands, hasCommands := objectField(body, "commands")
	a.Recognized = hasSettings || hasCommands

	for name, raw := range settings {
		s := Setting{Name: name, Value: displayValue(raw)}
		if isSensitive(name) && s.Value != "" {
			s.Value = maskedValue
			s.Masked = true
		}
		a.Settings = append(a.Settings, s)
	}
	sort.Slice(a.Settings, func(i, j int) bool { return a.Settings[i].Name < a.Settings[j].Name })

	for name, raw := range commands {
		a.Commands = append(a.Commands, Command{Name: name, Enabled: isEnabled(raw)})
	}
	sort.Slice(a.Commands, func(i, j int) bool { return a.Commands[i].Name < a.Commands[j].Name })

	return a
}

// EnabledCommands returns the names of enabled commands, sorted.
func (a Agent) EnabledCommands() []string {
	var names []string
	for _, c := range a.Commands {
		if c.Enabled {
			names = append(names, c.Name)
		}
	}
	return names
}

// isEnabled reports whether a command value turns the command on. Both the
// boolean true and the string "true" do.
func isEnabled(raw json.RawMessage) bool {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s == "true"
	}
	return false
}

func isSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, suffix := range sensitiveSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// displayValue unquotes JSON strings and compacts everything else.
func displayValue(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) != nil {
		return string(raw)
	}
	return buf.String()
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func objectField(obj map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := obj[key]
	if !ok {
		return nil, false
	}
	var out map[string]json.RawMessage
	if json.Unmarshal(raw, &out) != nil || out == nil {
		return nil, false
	}
	return out, true
}
