package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/dchaplinsky/edrdr/internal/domain/services"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/parsers"
)

// ListsHandler loads the watch-list, ownership-link and charter capital CSV files.
type ListsHandler struct {
	registry *services.RegistryService
}

// NewListsHandler creates a new lists handler.
func NewListsHandler(registry *services.RegistryService) *ListsHandler {
	return &ListsHandler{registry: registry}
}

// LoadResult contains the outcome of a list load.
type LoadResult struct {
	Loaded int
	Errors []services.ImportError
}

// LoadWatchList replaces the watch-list with the rows of the file.
func (h *ListsHandler) LoadWatchList(ctx context.Context, filePath string) (*LoadResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rows, err := parsers.ParseWatchList(file)
	if err != nil {
		return nil, fmt.Errorf("parsing watch-list: %w", err)
	}

	n, errs, err := h.registry.LoadWatchList(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Loaded: n, Errors: errs}, nil
}

// LoadOwnershipLinks replaces the ownership links with the rows of the file.
func (h *ListsHandler) LoadOwnershipLinks(ctx context.Context, filePath string) (*LoadResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rows, err := parsers.ParseOwnershipLinks(file)
	if err != nil {
		return nil, fmt.Errorf("parsing ownership links: %w", err)
	}

	n, errs, err := h.registry.LoadOwnershipLinks(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Loaded: n, Errors: errs}, nil
}

// LoadCharterCapital replaces the stored charter capital with the rows of the file.
func (h *ListsHandler) LoadCharterCapital(ctx context.Context, filePath string) (*LoadResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rows, err := parsers.ParseCharterCapital(file)
	if err != nil {
		return nil, fmt.Errorf("parsing charter capital: %w", err)
	}

	n, errs, err := h.registry.LoadCharterCapital(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Loaded: n, Errors: errs}, nil
}
