package mocks

import (
	"context"
	"slices"
	"sync"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// FactStore is an in-memory implementation of ports.FactStore and ports.FactWriter.
type FactStore struct {
	mu        sync.Mutex
	Revisions []entities.Revision
	Records   map[entities.CompanyID][]entities.CompanyRecord
	People    map[entities.CompanyID][]entities.Person
	Err       error

	CompanyRecordsCallCount int
}

// NewFactStore creates an empty FactStore.
func NewFactStore() *FactStore {
	return &FactStore{
		Records: make(map[entities.CompanyID][]entities.CompanyRecord),
		People:  make(map[entities.CompanyID][]entities.Person),
	}
}

// AddRecord appends a record without merging.
func (m *FactStore) AddRecord(rec entities.CompanyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[rec.CompanyID] = append(m.Records[rec.CompanyID], rec)
}

// AddPerson appends a person without merging.
func (m *FactStore) AddPerson(p entities.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.People[p.CompanyID] = append(m.People[p.CompanyID], p)
}

// SetErr makes every following call fail with err.
func (m *FactStore) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// ListRevisions returns the configured revisions.
func (m *FactStore) ListRevisions(_ context.Context) ([]entities.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.Revisions), nil
}

// CompanyRecords returns the records of a company.
func (m *FactStore) CompanyRecords(_ context.Context, companyID entities.CompanyID) ([]entities.CompanyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.CompanyRecordsCallCount++
	return slices.Clone(m.Records[companyID]), nil
}

// Persons returns the persons of a company.
func (m *FactStore) Persons(_ context.Context, companyID entities.CompanyID) ([]entities.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.People[companyID]), nil
}

// CompanyRecordsAt returns every record observed in the revision.
func (m *FactStore) CompanyRecordsAt(_ context.Context, revisionID entities.RevisionID) ([]entities.CompanyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.CompanyRecord
	for _, id := range m.companyIDs() {
		for _, r := range m.Records[id] {
			if r.ObservedIn(revisionID) {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// CompanyIDsAt returns the companies with records in the revision.
func (m *FactStore) CompanyIDsAt(_ context.Context, revisionID entities.RevisionID) ([]entities.CompanyID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.CompanyID
	for _, id := range m.companyIDs() {
		for _, r := range m.Records[id] {
			if r.ObservedIn(revisionID) {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func (m *FactStore) companyIDs() []entities.CompanyID {
	ids := make([]entities.CompanyID, 0, len(m.Records))
	for id := range m.Records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SaveRevision inserts or replaces a revision.
func (m *FactStore) SaveRevision(_ context.Context, rev *entities.Revision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Revisions {
		if m.Revisions[i].ID == rev.ID {
			m.Revisions[i] = *rev
			return nil
		}
	}
	m.Revisions = append(m.Revisions, *rev)
	return nil
}

// MergeCompanyRecord merges the record into the one with the same hash.
func (m *FactStore) MergeCompanyRecord(_ context.Context, rec *entities.CompanyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	recs := m.Records[rec.CompanyID]
	for i := range recs {
		if recs[i].Hash == rec.Hash {
			recs[i].Revisions = mergeRevisions(recs[i].Revisions, rec.Revisions)
			return nil
		}
	}
	m.Records[rec.CompanyID] = append(recs, *rec)
	return nil
}

// MergePerson merges the person into the one with the same hash.
func (m *FactStore) MergePerson(_ context.Context, p *entities.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	people := m.People[p.CompanyID]
	for i := range people {
		if people[i].Hash == p.Hash {
			people[i].Revisions = mergeRevisions(people[i].Revisions, p.Revisions)
			if !people[i].HasNames() && p.HasNames() {
				people[i].Names = p.Names
				people[i].Addresses = p.Addresses
				people[i].Countries = p.Countries
				people[i].WasDereferenced = p.WasDereferenced
			}
			return nil
		}
	}
	m.People[p.CompanyID] = append(people, *p)
	return nil
}

// RevisionStats counts facts per revision.
func (m *FactStore) RevisionStats(_ context.Context) (map[entities.RevisionID]ports.RevisionCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	stats := make(map[entities.RevisionID]ports.RevisionCounts)
	for _, recs := range m.Records {
		for _, r := range recs {
			for _, id := range r.Revisions {
				c := stats[id]
				c.Companies++
				stats[id] = c
			}
		}
	}
	for _, people := range m.People {
		for _, p := range people {
			for _, id := range p.Revisions {
				c := stats[id]
				c.Persons++
				stats[id] = c
			}
		}
	}
	return stats, nil
}

func mergeRevisions(a, b []entities.RevisionID) []entities.RevisionID {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
