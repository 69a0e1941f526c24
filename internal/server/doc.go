// Package server exposes the tally engine over HTTP.
//
// Routes:
//
//	POST /tallies              count an election (JSON election document)
//	GET  /tallies              list stored tallies
//	GET  /tallies/{id}         one stored tally with its result
//	GET  /tallies/{id}/rounds  round snapshots of a stored tally
//	GET  /healthz              liveness, including the store when configured
//	GET  /metrics              Prometheus metrics
//
// Store-backed routes answer 503 when the server runs without a store.
// Each request counts on its own engine invocation; the engine keeps no
// state between tallies.
package server
