package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

const defaultAuditLimit = 50

func newAuditCmd() *cobra.Command {
	var (
		company int64
		action  string
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log",
		Long:  "Lists audit entries of one company with --company, or the newest entries of an action.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if company == 0 && action == "" {
				return fmt.Errorf("one of --company or --action is required")
			}
			ctx := cmd.Context()
			return withInternalDeps(ctx, func(d *internalDeps) error {
				var (
					entries []entities.AuditEntry
					err     error
				)
				if company != 0 {
					entries, err = d.db.FindAuditLog(ctx, entities.CompanyID(company))
				} else {
					entries, err = d.db.FindAuditLogByAction(ctx, action, limit)
				}
				if err != nil {
					return err
				}

				if asJSON {
					return printJSON(os.Stdout, entries)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", e.CreatedAt.Format(time.DateTime), e.Action, e.CompanyID, e.Details)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Int64VarP(&company, "company", "c", 0, "Company id")
	cmd.Flags().StringVarP(&action, "action", "a", "", "Action (snapshot_computed, snapshot_forced, import, ...)")
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultAuditLimit, "Maximum entries for --action")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}
