package view

import (
	"bytes"
	"encoding/json"
)

// Text messages for the non-success variants.
const (
	LoadingText     = "Loading..."
	errorTextPrefix = "Failed to load: "
)

// Text renders plain, uncolored text.
type Text struct {
	// Content renders the payload. When nil the payload is pretty-printed.
	Content Component[string]
}

// Loading implements Renderer.
func (Text) Loading() string {
	return LoadingText
}

// Error implements Renderer.
func (Text) Error(err error) string {
	if err == nil {
		return errorTextPrefix + "unknown error"
	}
	return errorTextPrefix + err.Error()
}

// Success implements Renderer.
func (t Text) Success(data json.RawMessage) string {
	if t.Content != nil {
		return t.Content(data)
	}
	return PrettyJSON(data)
}

// PrettyJSON indents data, or returns it unchanged when it is not JSON.
func PrettyJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
