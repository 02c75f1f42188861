package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// indexBatchSize is how many companies are embedded per request.
const indexBatchSize = 100

// IndexService pushes company snapshots into the search index.
type IndexService struct {
	facts     ports.FactStore
	snapshots ports.SnapshotStore
	embedder  ports.Embedder
	index     ports.SearchIndex
}

// NewIndexService creates a new IndexService.
func NewIndexService(
	facts ports.FactStore,
	snapshots ports.SnapshotStore,
	embedder ports.Embedder,
	index ports.SearchIndex,
) *IndexService {
	return &IndexService{
		facts:     facts,
		snapshots: snapshots,
		embedder:  embedder,
		index:     index,
	}
}

// Index embeds and stores every computed snapshot of the revision.
// Companies absent from the revision are skipped.
func (s *IndexService) Index(ctx context.Context, revisionID entities.RevisionID) (int, error) {
	flags, err := s.snapshots.ListSnapshotsAt(ctx, revisionID)
	if err != nil {
		return 0, fmt.Errorf("listing snapshots: %w", err)
	}

	var docs []ports.IndexedCompany
	for _, f := range flags {
		if f.NotPresentInRevision {
			continue
		}
		records, err := s.facts.CompanyRecords(ctx, f.CompanyID)
		if err != nil {
			return 0, fmt.Errorf("loading company %d: %w", f.CompanyID, err)
		}
		name := ""
		var current []entities.CompanyRecord
		for _, r := range records {
			if r.ObservedIn(revisionID) {
				current = append(current, r)
			}
		}
		if len(current) > 0 {
			rec, err := ByStatusPriority(current)
			if err != nil {
				return 0, err
			}
			name = rec.Name
		}
		docs = append(docs, ports.IndexedCompany{
			CompanyID:  f.CompanyID,
			RevisionID: revisionID,
			Name:       name,
			Text:       documentText(name, f),
			Flags:      f,
		})
	}

	for start := 0; start < len(docs); start += indexBatchSize {
		batch := docs[start:min(start+indexBatchSize, len(docs))]
		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("generating embeddings: %w", err)
		}
		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}
		if err := s.index.Upsert(ctx, batch); err != nil {
			return 0, fmt.Errorf("indexing companies: %w", err)
		}
	}

	return len(docs), nil
}

// Search returns companies whose indexed text is closest to the query.
func (s *IndexService) Search(ctx context.Context, query string, limit int) ([]entities.CompanyID, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return s.index.Search(ctx, embedding, limit)
}

func documentText(name string, f entities.SnapshotFlags) string {
	var b strings.Builder
	b.WriteString(name)
	for _, part := range []struct {
		label string
		names []string
	}{
		{"owners", f.AllOwnerPersons},
		{"founders", f.AllFounderPersons},
		{"heads", f.AllHeadPersons},
		{"countries", f.AllBoCountries},
	} {
		if len(part.names) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", part.label, strings.Join(part.names, ", "))
	}
	return b.String()
}
