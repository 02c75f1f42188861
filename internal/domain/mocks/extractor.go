package mocks

import (
	"context"

	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// PersonExtractor is a mock implementation of ports.PersonExtractor.
type PersonExtractor struct {
	Results map[string]*ports.ExtractedPerson
	Err     error

	ExtractCallCount int
}

// Extract returns the configured result for the raw record, or an empty one.
func (m *PersonExtractor) Extract(_ context.Context, raw string) (*ports.ExtractedPerson, error) {
	m.ExtractCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Results[raw]; ok {
		return r, nil
	}
	return &ports.ExtractedPerson{}, nil
}

// ExtractionCache is an in-memory implementation of ports.ExtractionCache.
type ExtractionCache struct {
	Items  map[string]*ports.ExtractedPerson
	GetErr error
	SetErr error
}

// NewExtractionCache creates an empty ExtractionCache.
func NewExtractionCache() *ExtractionCache {
	return &ExtractionCache{Items: make(map[string]*ports.ExtractedPerson)}
}

// Get returns the cached result or nil.
func (m *ExtractionCache) Get(_ context.Context, raw string) (*ports.ExtractedPerson, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Items[raw], nil
}

// Set stores the result.
func (m *ExtractionCache) Set(_ context.Context, raw string, result *ports.ExtractedPerson) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Items[raw] = result
	return nil
}
