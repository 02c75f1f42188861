// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/relationaldb/sqlite"
)

// IndexOpener connects to the search index described by a freshly written
// config. The returned function releases the connection.
type IndexOpener func(cfg *config.Config) (ports.SearchIndex, func() error, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	openIndex  IndexOpener
	vectorSize uint64
}

// NewInitHandler creates a new init handler. openIndex may be nil, in which
// case no search collection is created.
func NewInitHandler(openIndex IndexOpener, vectorSize uint64) *InitHandler {
	return &InitHandler{
		openIndex:  openIndex,
		vectorSize: vectorSize,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	DatabasePath string
	Collection   bool
}

// Handle writes the default config and creates the database schema.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("edrdr already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	repo, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	result := &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DatabasePath: repo.Path(),
	}

	if h.openIndex != nil {
		index, closeIndex, err := h.openIndex(cfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to search index: %w", err)
		}
		defer closeIndex()

		if err := index.EnsureCollection(ctx, h.vectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
		result.Collection = true
	}

	return result, nil
}
