package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/application/handlers"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
	embedder "github.com/dchaplinsky/edrdr/internal/infrastructure/embedder/openai"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	var withIndex bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new edrdr workspace",
		Long:  "Creates a .edrdr directory with default configuration and the SQLite schema. With --index, also creates the Qdrant collection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, withIndex)
		},
	}

	cmd.Flags().BoolVar(&withIndex, "index", false, "Also create the search collection in Qdrant")

	return cmd
}

func runInit(cmd *cobra.Command, withIndex bool) error {
	dir, err := workspaceDir()
	if err != nil {
		return err
	}

	var opener handlers.IndexOpener
	if withIndex {
		opener = func(cfg *config.Config) (ports.SearchIndex, func() error, error) {
			repo, err := qdrant.NewRepository(cfg.Qdrant, cfg.CollectionName(indexDataset))
			if err != nil {
				return nil, nil, err
			}
			return repo, repo.Close, nil
		}
	}

	result, err := handlers.NewInitHandler(opener, embedder.VectorSize).Handle(cmd.Context(), dir)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created database %s\n", result.DatabasePath)
	if result.Collection {
		fmt.Println("Created Qdrant collection")
	}
	fmt.Println("\nedrdr initialized successfully!")

	return nil
}
