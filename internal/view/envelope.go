package view

import (
	"encoding/json"
	"time"

	"github.com/rshade/agentview/internal/fetch"
)

// Envelope is the machine-readable form of a fetch.State.
type Envelope struct {
	Key        string          `json:"key"`
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Validating bool            `json:"validating,omitempty"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

// JSON renders Envelopes for a single key.
type JSON struct {
	Key string
}

// Loading implements Renderer.
func (j JSON) Loading() Envelope {
	return Envelope{Key: j.Key, Status: fetch.StatusLoading.String()}
}

// Error implements Renderer.
func (j JSON) Error(err error) Envelope {
	env := Envelope{Key: j.Key, Status: fetch.StatusError.String()}
	if err != nil {
		env.Error = err.Error()
	}
	return env
}

// Success implements Renderer.
func (j JSON) Success(data json.RawMessage) Envelope {
	return Envelope{Key: j.Key, Status: fetch.StatusSuccess.String(), Data: data}
}

// EnvelopeOf renders state as an Envelope. Unlike plain delegation it also
// reports a failed revalidation alongside stale data.
func EnvelopeOf(state fetch.State) Envelope {
	env := Delegate(state, JSON{Key: state.Key})
	if state.Err != nil && env.Error == "" {
		env.Error = state.Err.Error()
	}
	env.Validating = state.Validating
	if !state.UpdatedAt.IsZero() {
		t := state.UpdatedAt
		env.UpdatedAt = &t
	}
	return env
}
