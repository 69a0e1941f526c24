// Package harness provides conformance testing for the STV tally engine.
//
// A scenario is a small election written inline in YAML together with the
// outcome it must produce. The harness counts it with the real engine,
// persists the tally to a fresh in-memory store, reads it back, and checks
// the expectations against what was stored.
//
// # Scenario Format
//
//	name: surplus_transfer
//	description: "A's surplus moves at a fractional weight"
//	seats: 2
//	election:
//	  candidates:
//	    - id: A
//	    - id: B
//	  ballots:
//	    - ranking: "A>B"
//	      count: 4
//	expect:
//	  winners: [A, B]
//	  eliminated: [C]
//	  max_rounds: 2
//
// Top-level seats, quota and tie_break override the values the election
// block declares. An expectation carries either winners or an error code
// (INVALID_INPUT, AMBIGUOUS, STALLED), never both.
//
// # Golden Traces
//
// RunWithGolden compares the canonical JSON of the full round trace with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
//
// # Determinism
//
// Every run uses an isolated in-memory SQLite database and sequential tally
// IDs, and the stored result hash must match the hash of the in-process
// result. A scenario therefore passes only if its count survives a store
// round-trip unchanged.
package harness
