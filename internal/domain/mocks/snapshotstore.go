package mocks

import (
	"context"
	"slices"
	"sync"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

type snapshotKey struct {
	company  entities.CompanyID
	revision entities.RevisionID
}

// SnapshotStore is an in-memory implementation of ports.SnapshotStore.
type SnapshotStore struct {
	mu      sync.Mutex
	records map[snapshotKey]entities.SnapshotFlags
	Err     error
	SaveErr error

	SaveCallCount int
}

// NewSnapshotStore creates an empty SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{records: make(map[snapshotKey]entities.SnapshotFlags)}
}

// GetSnapshot returns a stored record or nil.
func (m *SnapshotStore) GetSnapshot(
	_ context.Context,
	companyID entities.CompanyID,
	revisionID entities.RevisionID,
) (*entities.SnapshotFlags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	f, ok := m.records[snapshotKey{companyID, revisionID}]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// SaveSnapshot stores a copy of the record.
func (m *SnapshotStore) SaveSnapshot(_ context.Context, flags *entities.SnapshotFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.SaveCallCount++
	m.records[snapshotKey{flags.CompanyID, flags.RevisionID}] = *flags
	return nil
}

// ListSnapshots returns a company's records ordered by revision.
func (m *SnapshotStore) ListSnapshots(_ context.Context, companyID entities.CompanyID) ([]entities.SnapshotFlags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.SnapshotFlags
	for k, f := range m.records {
		if k.company == companyID {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b entities.SnapshotFlags) int { return int(a.RevisionID - b.RevisionID) })
	return out, nil
}

// ListSnapshotsAt returns every record of the revision ordered by company.
func (m *SnapshotStore) ListSnapshotsAt(_ context.Context, revisionID entities.RevisionID) ([]entities.SnapshotFlags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.SnapshotFlags
	for k, f := range m.records {
		if k.revision == revisionID {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b entities.SnapshotFlags) int { return int(a.CompanyID - b.CompanyID) })
	return out, nil
}

// Len returns the number of stored records.
func (m *SnapshotStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
