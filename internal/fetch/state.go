package fetch

import (
	"context"
	"encoding/json"
	"time"
)

// Status is the rendering variant a State resolves to.
type Status int

const (
	// StatusLoading means there is no data and no error yet.
	StatusLoading Status = iota
	// StatusError means the last fetch failed and there is no data to show.
	StatusError
	// StatusSuccess means data is available, possibly stale.
	StatusSuccess
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// State is a snapshot of one key in the cache.
type State struct {
	Key string

	// Data is the last successfully fetched payload. It is kept when a
	// later revalidation fails.
	Data json.RawMessage

	// Err is the error from the most recent fetch, nil after a success.
	Err error

	// Loading is true while there is no data and a fetch has not resolved.
	Loading bool

	// Validating is true while a fetch for the key is in flight.
	Validating bool

	// UpdatedAt is when Data was fetched. Zero when there is no data.
	UpdatedAt time.Time
}

// Status resolves the state to a rendering variant. Data wins over an
// error, so a failed background refresh keeps showing the last payload.
func (s State) Status() Status {
	switch {
	case len(s.Data) > 0:
		return StatusSuccess
	case s.Err != nil:
		return StatusError
	default:
		return StatusLoading
	}
}

// HasData reports whether a payload is available.
func (s State) HasData() bool {
	return len(s.Data) > 0
}

// Fetcher retrieves the payload for one key.
type Fetcher func(ctx context.Context) (json.RawMessage, error)
