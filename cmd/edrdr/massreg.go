package main

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMassRegCmd() *cobra.Command {
	var (
		revision int64
		cutoff   int
	)

	cmd := &cobra.Command{
		Use:   "massreg",
		Short: "List mass registration addresses of a revision",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				revisionID, err := resolveRevision(ctx, d, revision)
				if err != nil {
					return err
				}
				if cutoff <= 0 {
					cutoff = d.Config.Snapshot.MassCutoff
				}

				index, err := d.Indexer.AddressesAbove(ctx, revisionID, cutoff)
				if err != nil {
					return err
				}

				type row struct {
					address string
					count   int
				}
				rows := make([]row, 0, len(index.Counts))
				for addr, n := range index.Counts {
					rows = append(rows, row{addr, n})
				}
				slices.SortFunc(rows, func(a, b row) int {
					if c := cmp.Compare(b.count, a.count); c != 0 {
						return c
					}
					return cmp.Compare(a.address, b.address)
				})

				fmt.Printf("Revision %d, %d addresses with at least %d companies:\n\n", revisionID, len(rows), cutoff)
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\n", r.count, r.address)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Int64VarP(&revision, "revision", "r", 0, "Revision id (default: latest accepted)")
	cmd.Flags().IntVar(&cutoff, "cutoff", 0, "Minimum companies per address (default from config)")

	return cmd
}
