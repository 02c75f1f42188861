package ports

import "context"

// ExtractedPerson is what the extraction collaborator recovers from a raw
// founder or owner string.
type ExtractedPerson struct {
	Names        []string `json:"names"`
	Addresses    []string `json:"addresses"`
	Countries    []string `json:"countries"`
	HasReference bool     `json:"has_reference"`
}

// PersonExtractor turns free-text person records into structured fields.
type PersonExtractor interface {
	Extract(ctx context.Context, raw string) (*ExtractedPerson, error)
}

// ExtractionCache memoizes extraction results by raw record.
type ExtractionCache interface {
	// Get returns the cached result, or nil when absent.
	Get(ctx context.Context, raw string) (*ExtractedPerson, error)
	Set(ctx context.Context, raw string, result *ExtractedPerson) error
}
