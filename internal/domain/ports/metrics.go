package ports

import "time"

// Metrics receives diagnostics of snapshot computation. Implementations must
// not influence computed results.
type Metrics interface {
	SnapshotComputed(d time.Duration)
	SnapshotSkipped()
	SnapshotFailed()
	MatchOverflow(comparison string)
}
