package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is a single cached payload with TTL metadata.
type Entry struct {
	// Key is the fetch key the payload belongs to.
	Key string `json:"key"`

	// Data is the cached payload.
	Data json.RawMessage `json:"data"`

	// CreatedAt is when the payload was stored.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the payload stops being served.
	ExpiresAt time.Time `json:"expires_at"`

	// TTLSeconds is the time-to-live in seconds (for reference).
	TTLSeconds int `json:"ttl_seconds"`
}

// NewEntry creates an entry that expires ttlSeconds from now.
func NewEntry(key string, data json.RawMessage, ttlSeconds int) *Entry {
	now := time.Now()
	return &Entry{
		Key:        key,
		Data:       data,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// IsExpired reports whether the entry is past its expiration time.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// MarshalJSON formats times as RFC3339 with nanoseconds so CreatedAt
// survives a round trip through FileStore.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	return json.Marshal(&struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		Alias:     (*Alias)(e),
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		ExpiresAt: e.ExpiresAt.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON parses the RFC3339 timestamps written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type Alias Entry
	aux := &struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, aux.CreatedAt)
	if err != nil {
		return err
	}

	e.ExpiresAt, err = time.Parse(time.RFC3339Nano, aux.ExpiresAt)
	if err != nil {
		return err
	}

	return nil
}
