// Package ir provides the canonical election representation shared by every
// other package: candidates, ballots, elections, round snapshots and results.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - vote values are exact rationals carried as
//     strings ("34", "59/3") produced by big.Rat.RatString
//   - Candidate order inside an Election is the order ingestion produced;
//     nothing downstream depends on map iteration order
//   - All JSON tags use snake_case
//   - Content-addressed hashes use RFC 8785 canonical JSON (see canonical.go)
package ir
