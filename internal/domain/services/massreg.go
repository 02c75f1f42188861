package services

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// MassIndex maps normalized addresses shared by at least Cutoff companies
// in a revision to the number of companies registered there.
type MassIndex struct {
	Revision entities.RevisionID `json:"revision"`
	Cutoff   int                 `json:"cutoff"`
	Counts   map[string]int      `json:"counts"`
}

// Lookup returns the company count for an address and whether it is a mass
// registration address.
func (m *MassIndex) Lookup(address string) (int, bool) {
	if m == nil {
		return 0, false
	}
	n, ok := m.Counts[NormalizeAddress(address)]
	return n, ok
}

// NormalizeAddress is the key addresses are grouped under.
func NormalizeAddress(address string) string {
	return entities.NormalizeField(address)
}

type massKey struct {
	revision entities.RevisionID
	cutoff   int
}

// MassRegistrationIndexer aggregates authoritative company addresses per
// revision. Companies whose authoritative record cannot be resolved are left
// out. Built indexes are cached; they never change once the revision is
// imported.
type MassRegistrationIndexer struct {
	facts ports.FactStore
	cache *lru.Cache[massKey, *MassIndex]
}

// NewMassRegistrationIndexer creates an indexer keeping up to cacheSize indexes.
func NewMassRegistrationIndexer(facts ports.FactStore, cacheSize int) (*MassRegistrationIndexer, error) {
	cache, err := lru.New[massKey, *MassIndex](max(cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("creating mass index cache: %w", err)
	}
	return &MassRegistrationIndexer{facts: facts, cache: cache}, nil
}

// AddressesAbove returns the addresses shared by at least cutoff companies at the revision.
func (m *MassRegistrationIndexer) AddressesAbove(
	ctx context.Context,
	revisionID entities.RevisionID,
	cutoff int,
) (*MassIndex, error) {
	key := massKey{revision: revisionID, cutoff: cutoff}
	if idx, ok := m.cache.Get(key); ok {
		return idx, nil
	}

	records, err := m.facts.CompanyRecordsAt(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("loading records of revision %d: %w", revisionID, err)
	}

	byCompany := make(map[entities.CompanyID][]entities.CompanyRecord)
	for _, r := range records {
		byCompany[r.CompanyID] = append(byCompany[r.CompanyID], r)
	}

	counts := make(map[string]int)
	for _, recs := range byCompany {
		rec, err := ByStatusPriority(recs)
		if err != nil {
			// The company fails on its own when its snapshot is computed.
			continue
		}
		if addr := NormalizeAddress(rec.Location); addr != "" {
			counts[addr]++
		}
	}
	for addr, n := range counts {
		if n < cutoff {
			delete(counts, addr)
		}
	}

	idx := &MassIndex{Revision: revisionID, Cutoff: cutoff, Counts: counts}
	m.cache.Add(key, idx)
	return idx, nil
}
