// Package store provides SQLite-backed durable storage for recorded
// reconciliation sessions and merge runs.
//
// The store implements an append-only log with:
//   - Sessions: the exact source text a session was parsed from
//   - Sequences: per-label summary rows for each sequence in a session
//   - Merge runs: recorded greedy or enumerated merge outcomes
//
// # Logical Time
//
// All ordering uses created_seq (a logical clock), never timestamps.
// Queries that return multiple rows order by created_seq, then id with
// binary collation, so replays see rows in a fixed order regardless of
// wall time.
//
// # Replay
//
// Recorded results are reproducible from first principles. ReplaySessions
// re-parses each stored source text, recomputes every recorded merge run
// through the same code path used at record time, and reports divergences.
// A divergence means the stored log and the current merge code disagree.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
