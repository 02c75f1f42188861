package mocks

import (
	"context"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// SearchIndex is a mock implementation of ports.SearchIndex.
type SearchIndex struct {
	Docs          []ports.IndexedCompany
	SearchResults []entities.CompanyID
	Err           error

	UpsertCallCount           int
	EnsureCollectionCallCount int
}

// EnsureCollection records the call.
func (m *SearchIndex) EnsureCollection(_ context.Context, _ uint64) error {
	m.EnsureCollectionCallCount++
	return m.Err
}

// Upsert records the documents.
func (m *SearchIndex) Upsert(_ context.Context, docs []ports.IndexedCompany) error {
	m.UpsertCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Docs = append(m.Docs, docs...)
	return nil
}

// Search returns the configured results.
func (m *SearchIndex) Search(_ context.Context, _ []float32, limit int) ([]entities.CompanyID, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit < len(m.SearchResults) {
		return m.SearchResults[:limit], nil
	}
	return m.SearchResults, nil
}
