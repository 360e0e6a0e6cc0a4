package ir

// Version constants for the snapshot format and engine.
const (
	// IRVersion is the snapshot schema version.
	IRVersion = "1"

	// EngineVersion is the turnkit engine version.
	EngineVersion = "0.1.0"
)
