package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/application/handlers"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/vectordb/qdrant"
)

func newIndexCmd() *cobra.Command {
	var (
		revision int64
		rebuild  bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index company snapshots for semantic search",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withSearch(ctx, rebuild, func(d *Deps, index *services.IndexService, repo *qdrant.Repository) error {
				revisionID, err := resolveRevision(ctx, d, revision)
				if err != nil {
					return err
				}
				n, err := index.Index(ctx, revisionID)
				if err != nil {
					return err
				}
				total, err := repo.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Indexed %d companies of revision %d into %s (%d points).\n",
					n, revisionID, repo.Collection(), total)
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&revision, "revision", "r", 0, "Revision id (default: latest accepted)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Drop the collection before indexing")

	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find companies by meaning of their name and flags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			ctx := cmd.Context()
			return withSearch(ctx, false, func(d *Deps, index *services.IndexService, _ *qdrant.Repository) error {
				result, err := handlers.NewQueryHandler(index, d.History).Handle(ctx, query, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(os.Stdout, result)
				}
				if len(result.Matches) == 0 {
					return errors.New("no matching companies")
				}
				for _, m := range result.Matches {
					if m.Latest == nil {
						fmt.Printf("%d\n", m.CompanyID)
						continue
					}
					fmt.Printf("%d\trevision %d\t%s\tbo=%t\n",
						m.CompanyID, m.Latest.RevisionID, m.Latest.Status, m.Latest.HasBo)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}
