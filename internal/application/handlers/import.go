package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/dchaplinsky/edrdr/internal/domain/services"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/parsers"
)

// ImportHandler handles importing registry observations from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format  string // "json", "csv", or "auto"
	DryRun  bool   // Validate without saving
	Extract bool   // Fill nameless persons from their raw records
}

// Handle imports observations from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*services.ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	observations, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if len(observations) == 0 {
		return &services.ImportResult{}, nil
	}

	return h.service.Import(ctx, observations, services.ImportOptions{
		DryRun:  opts.DryRun,
		Extract: opts.Extract,
	})
}
