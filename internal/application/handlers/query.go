package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

// QueryHandler handles semantic company search.
type QueryHandler struct {
	index   *services.IndexService
	history *services.HistoryService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(index *services.IndexService, history *services.HistoryService) *QueryHandler {
	return &QueryHandler{
		index:   index,
		history: history,
	}
}

// QueryMatch is one company found by a query, with its newest snapshot if any.
type QueryMatch struct {
	CompanyID entities.CompanyID
	Latest    *entities.SnapshotFlags
}

// QueryResult contains the result of a query.
type QueryResult struct {
	Query   string
	Matches []QueryMatch
}

// Handle searches the index for companies matching the query.
func (h *QueryHandler) Handle(ctx context.Context, query string, limit int) (*QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	ids, err := h.index.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching companies: %w", err)
	}

	result := &QueryResult{Query: query, Matches: make([]QueryMatch, 0, len(ids))}
	for _, id := range ids {
		m := QueryMatch{CompanyID: id}
		if h.history != nil {
			flags, err := h.history.Snapshots(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("loading snapshots of company %d: %w", id, err)
			}
			if len(flags) > 0 {
				m.Latest = &flags[len(flags)-1]
			}
		}
		result.Matches = append(result.Matches, m)
	}

	return result, nil
}
