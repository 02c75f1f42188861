package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

func newRevisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revisions",
		Short: "Manage registry revisions",
	}

	cmd.AddCommand(newRevisionsAddCmd(), newRevisionsListCmd(), newRevisionsCheckCmd())

	return cmd
}

type revisionFlags struct {
	dataset  string
	created  string
	url      string
	imported bool
	ignore   bool
}

func newRevisionsAddCmd() *cobra.Command {
	var flags revisionFlags

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register or update a revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid revision id %q", args[0])
			}
			created, err := time.Parse(time.RFC3339, flags.created)
			if err != nil {
				if created, err = time.Parse(time.DateOnly, flags.created); err != nil {
					return fmt.Errorf("invalid --created %q (use RFC 3339 or YYYY-MM-DD)", flags.created)
				}
			}

			rev := entities.Revision{
				ID:        entities.RevisionID(id),
				DatasetID: flags.dataset,
				Created:   created.UTC(),
				Imported:  flags.imported,
				Ignore:    flags.ignore,
				URL:       flags.url,
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				if err := d.Registry.AddRevision(cmd.Context(), rev); err != nil {
					return err
				}
				fmt.Printf("Revision %d saved (accepted: %t)\n", rev.ID, rev.Accepted())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.dataset, "dataset", "", "Dataset identifier")
	cmd.Flags().StringVar(&flags.created, "created", "", "Creation time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.url, "url", "", "Source URL")
	cmd.Flags().BoolVar(&flags.imported, "imported", true, "Whether the revision was fully imported")
	cmd.Flags().BoolVar(&flags.ignore, "ignore", false, "Exclude the revision from the timeline")
	_ = cmd.MarkFlagRequired("created")

	return cmd
}

func newRevisionsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List revisions in timeline order with fact counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				revisions, err := d.Registry.Revisions(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(os.Stdout, revisions)
				}
				printRevisions(revisions)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func newRevisionsCheckCmd() *cobra.Command {
	var minRecords int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report accepted revisions with suspiciously few records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if !cmd.Flags().Changed("min") {
					minRecords = d.Config.Snapshot.MinRevisionRecords
				}
				broken, err := d.Registry.BrokenRevisions(cmd.Context(), minRecords)
				if err != nil {
					return err
				}
				if len(broken) == 0 {
					fmt.Println("All accepted revisions look complete.")
					return nil
				}
				fmt.Printf("Found %d revisions with fewer than %d records:\n\n", len(broken), minRecords)
				printRevisions(broken)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&minRecords, "min", 0, "Minimum company or person records (default from config)")

	return cmd
}

func printRevisions(revisions []services.RevisionReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tACCEPTED\tCOMPANIES\tPERSONS\tDATASET")
	for _, r := range revisions {
		fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%d\t%s\n",
			r.ID, r.Created.Format(time.DateTime), r.Accepted(), r.Companies, r.Persons, r.DatasetID)
	}
	_ = w.Flush()
}
