package mocks

import (
	"sync"
	"time"
)

// Metrics is a counting implementation of ports.Metrics.
type Metrics struct {
	mu        sync.Mutex
	Computed  int
	Skipped   int
	Failed    int
	Overflows map[string]int
}

// SnapshotComputed counts a computed snapshot.
func (m *Metrics) SnapshotComputed(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Computed++
}

// SnapshotSkipped counts a reused snapshot.
func (m *Metrics) SnapshotSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped++
}

// SnapshotFailed counts a failed snapshot.
func (m *Metrics) SnapshotFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed++
}

// MatchOverflow counts a skipped comparison.
func (m *Metrics) MatchOverflow(comparison string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Overflows == nil {
		m.Overflows = make(map[string]int)
	}
	m.Overflows[comparison]++
}
