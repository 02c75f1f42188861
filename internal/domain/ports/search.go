package ports

import (
	"context"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

// IndexedCompany is a company snapshot prepared for the search index.
type IndexedCompany struct {
	CompanyID  entities.CompanyID     `json:"company_id"`
	RevisionID entities.RevisionID    `json:"revision_id"`
	Name       string                 `json:"name"`
	Text       string                 `json:"text"`
	Flags      entities.SnapshotFlags `json:"flags"`
	Embedding  []float32              `json:"-"`
}

// SearchIndex stores company snapshots for full-text and semantic lookup.
type SearchIndex interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// Upsert stores documents, replacing earlier versions of the same company.
	Upsert(ctx context.Context, docs []IndexedCompany) error

	// Search returns the company IDs nearest to the embedding.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.CompanyID, error)
}
