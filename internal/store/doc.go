// Package store provides SQLite-backed durable storage for tallies.
//
// Each stored tally keeps everything needed to reproduce it:
//   - tallies: the canonical election payload, counting rules, headline
//     figures and the election and result hashes
//   - winners: one row per seat in rank order
//   - rounds: one canonical JSON snapshot per counting round
//
// # Critical Patterns
//
// Logical ordering
//   - Every tally gets a seq INTEGER assigned at write time (MAX(seq)+1)
//   - Listing queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Wall-clock timestamps are never stored, so repeating the same writes
//     yields byte-identical rows
//
// Content addressing
//   - election_hash and result_hash are computed by internal/ir using
//     RFC 8785 canonical JSON and SHA-256 with domain separation
//   - Replay recomputes the result and compares result_hash
//
// Atomic writes
//   - A tally, its winners and its rounds are written in one transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
