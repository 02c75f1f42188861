package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/application/handlers"
)

func newWatchListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage the politically exposed persons list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "load <csv>",
		Short: "Replace the watch-list with a CSV file",
		Long:  "Columns: edrpou, pep, years (\"2017, 2018\"), url, from_declaration, person_type (owner by default).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), "watch-list entries", func(h *handlers.ListsHandler) (*handlers.LoadResult, error) {
				return h.LoadWatchList(cmd.Context(), args[0])
			})
		},
	})

	return cmd
}

func newOwnershipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ownership",
		Short: "Manage company-to-company ownership links",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "load <csv>",
		Short: "Replace the ownership links with a CSV file",
		Long:  "Columns: edrpou, owner, description.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), "ownership links", func(h *handlers.ListsHandler) (*handlers.LoadResult, error) {
				return h.LoadOwnershipLinks(cmd.Context(), args[0])
			})
		},
	})

	return cmd
}

func newCapitalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capital",
		Short: "Manage declared charter capital",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "load <csv>",
		Short: "Replace the charter capital with a CSV file",
		Long:  "Columns: code (EDRPOU), capital. Non-positive amounts are ignored; stored snapshots keep their value until recomputed with --force.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), "charter capital amounts", func(h *handlers.ListsHandler) (*handlers.LoadResult, error) {
				return h.LoadCharterCapital(cmd.Context(), args[0])
			})
		},
	})

	return cmd
}

func runLoad(ctx context.Context, what string, load func(*handlers.ListsHandler) (*handlers.LoadResult, error)) error {
	return withDeps(ctx, func(d *Deps) error {
		result, err := load(d.Lists)
		if err != nil {
			return err
		}
		for _, e := range result.Errors {
			fmt.Printf("  skipped: %s\n", e.Error())
		}
		fmt.Printf("Loaded %d %s", result.Loaded, what)
		if len(result.Errors) > 0 {
			fmt.Printf(", %d skipped", len(result.Errors))
		}
		fmt.Println()
		return nil
	})
}
