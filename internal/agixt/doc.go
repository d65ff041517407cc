// Package agixt is a small client for the AGiXT HTTP API.
//
// Only the agent read endpoint is used:
//
//	GET <base>/api/agent/<agent>
//
// The response body is returned as raw JSON; its schema belongs to the
// backend.
package agixt
