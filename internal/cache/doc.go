// Package cache persists fetched JSON payloads with a TTL.
//
// It backs the fetch layer so a payload fetched by one agentview process can
// be shown immediately (as stale data) by the next one while it revalidates.
// Two stores are provided:
//   - MemoryStore keeps entries for the life of the process
//   - FileStore writes one JSON file per key under ~/.agentview/cache/
//
// Keys are the fetch keys themselves (for example "agent/alpha"); FileStore
// sanitizes them into file names.
package cache
