// Package store implements the history and profile stores used by the
// drafting pipeline.
//
// Two backends are provided:
//   - [MemoryHistory] and [MemoryProfiles]: thread-safe in-process storage
//   - [Postgres]: both stores over a pgx connection pool
//
// [ProfileCache] wraps any profile store with a bounded TTL cache.
//
// History appends are idempotent by request id, so a retried write never
// duplicates an entry. Listing returns the most recent entries first.
package store
