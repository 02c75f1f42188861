package main

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		revision int64
		sample   int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Count companies per snapshot flag at a revision",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				revisionID, err := resolveRevision(ctx, d, revision)
				if err != nil {
					return err
				}
				report, err := d.Reports.Generate(ctx, revisionID, sample)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(os.Stdout, report)
				}

				fmt.Printf("Revision %d: %d companies with snapshots\n\n", report.RevisionID, report.Companies)
				for _, line := range report.Lines {
					fmt.Printf("%-45s %8d  %s\n", line.Description, line.Count, joinIDs(line.Sample))
					keys := make([]string, 0, len(line.Breakdown))
					for k := range line.Breakdown {
						keys = append(keys, k)
					}
					slices.SortFunc(keys, func(a, b string) int {
						return cmp.Or(cmp.Compare(line.Breakdown[b], line.Breakdown[a]), cmp.Compare(a, b))
					})
					for _, k := range keys {
						fmt.Printf("    %-41s %8d\n", k, line.Breakdown[k])
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&revision, "revision", "r", 0, "Revision id (default: latest accepted)")
	cmd.Flags().IntVar(&sample, "sample", DefaultSampleSize, "Company ids listed per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}
