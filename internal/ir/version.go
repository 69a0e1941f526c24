package ir

// Version constants for the election encoding and the tally engine.
const (
	// IRVersion is the canonical election encoding version.
	IRVersion = "1"

	// EngineVersion is the STV engine version recorded with stored tallies.
	EngineVersion = "0.2.0"
)
