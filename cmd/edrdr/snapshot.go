package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

type snapshotFlags struct {
	revision  int64
	force     bool
	limit     int
	workers   int
	cutoff    int
	companies []int64
	asJSON    bool
}

func newSnapshotCmd() *cobra.Command {
	var flags snapshotFlags

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Compute snapshot flags for companies at a revision",
		Long: "Computes the derived ownership flags of every company present in the revision, or of the given " +
			"companies. Existing records are kept unless --force is set. Interrupting stops between companies.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, flags)
		},
	}

	cmd.Flags().Int64VarP(&flags.revision, "revision", "r", 0, "Revision id (default: latest accepted)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Recompute and overwrite existing records")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", 0, "Compute at most this many companies")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Parallel workers (default from config)")
	cmd.Flags().IntVar(&flags.cutoff, "cutoff", 0, "Mass registration cutoff (default from config)")
	cmd.Flags().Int64SliceVarP(&flags.companies, "company", "c", nil, "Company id (repeatable)")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print the summary as JSON")

	return cmd
}

func runSnapshot(cmd *cobra.Command, flags snapshotFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		opts := services.BatchOptions{
			RevisionID: entities.RevisionID(flags.revision),
			Companies:  toCompanyIDs(flags.companies),
			Force:      flags.force,
			Limit:      flags.limit,
			Workers:    flags.workers,
			MassCutoff: flags.cutoff,
		}
		if opts.Workers <= 0 {
			opts.Workers = d.Config.Snapshot.Workers
		}
		if opts.MassCutoff <= 0 {
			opts.MassCutoff = d.Config.Snapshot.MassCutoff
		}

		result, err := d.Batch.Run(ctx, opts)
		if err != nil {
			return err
		}

		if flags.asJSON {
			return printJSON(os.Stdout, result)
		}

		fmt.Printf("Run %s, revision %d: %d computed, %d failed\n",
			result.RunID, result.RevisionID, result.Computed, len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  company %d: %s\n", f.CompanyID, f.Error)
		}
		if result.Cancelled {
			fmt.Println("Interrupted; rerun to continue.")
		}
		return nil
	})
}
