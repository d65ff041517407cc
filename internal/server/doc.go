// Package server serves the agent page as server-rendered HTML.
//
// Routes:
//
//	GET /agent/:agent        HTML page for one agent
//	GET /agent/:agent/state  JSON fetch state, for polling clients
//	GET /agent/              loading page; no agent, no fetch
//	GET /healthz             liveness
//
// A page request waits up to RenderWait for an in-flight fetch. If the
// fetch is still running it renders the loading variant with a meta
// refresh, and the next request picks up the cached result.
package server
