// Package fetch is a keyed stale-while-revalidate cache for JSON payloads.
//
// A Cache hands out a State snapshot for a key right away and refreshes the
// key in the background. Callers that need the resolved value can block with
// Load, wait on Revalidate, or Subscribe to every resolution of a key.
// Concurrent fetches for the same key collapse into one request.
//
// Successful payloads are written through to a cache.Store, so a fresh
// process can show the last known payload while it revalidates.
package fetch
