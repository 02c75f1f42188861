package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

type exportFlags struct {
	format    string
	output    string
	revision  int64
	companies []int64
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export snapshot flags of a revision",
		Long: "Exports computed snapshot flags to JSON or CSV. Requested companies without a " +
			"snapshot are listed with status not_computed or not_found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Int64VarP(&flags.revision, "revision", "r", 0, "Revision id (default: latest accepted)")
	cmd.Flags().Int64SliceVarP(&flags.companies, "company", "c", nil, "Company id (repeatable)")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		revisionID, err := resolveRevision(ctx, d, flags.revision)
		if err != nil {
			return err
		}
		rows, err := d.Reports.Export(ctx, revisionID, toCompanyIDs(flags.companies))
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no snapshots computed for revision %d", revisionID)
		}
		return writeExport(flags.format, flags.output, rows)
	})
}

func writeExport(format, output string, rows []services.ExportRow) (err error) {
	var (
		w io.Writer = os.Stdout
		f *os.File
	)

	if output != "" {
		f, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	switch format {
	case "json":
		err = formatJSON(w, rows)
	case "csv":
		err = formatCSV(w, rows)
	default:
		err = fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d companies to %s\n", len(rows), output)
	}
	return nil
}

func formatJSON(w io.Writer, rows []services.ExportRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

var csvHeader = []string{
	"company_id", "revision_id", "status", "company_status", "is_acting",
	"is_mass_registered", "has_bo", "has_bo_persons", "has_bo_companies",
	"has_dereferenced_bo", "has_pep_owner", "has_bo_on_occupied_soil",
	"has_changes_in_ownership", "has_changes_in_bo", "self_owned", "self_owned_indirect",
	"owner_persons_count", "founder_persons_count", "all_bo_countries", "charter_capital",
}

func formatCapital(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func formatCSV(w io.Writer, rows []services.ExportRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		record := make([]string, len(csvHeader))
		record[0] = strconv.FormatInt(int64(r.CompanyID), 10)
		record[2] = r.Status
		if f := r.Flags; f != nil {
			b := strconv.FormatBool
			copy(record[1:], []string{strconv.FormatInt(int64(f.RevisionID), 10)})
			copy(record[3:], []string{
				f.Status.String(),
				b(f.IsActing),
				b(f.IsMassRegistered),
				b(f.HasBo),
				b(f.HasBoPersons),
				b(f.HasBoCompanies),
				b(f.HasDereferencedBo),
				b(f.HasPepOwner),
				b(f.HasBoOnOccupiedSoil),
				b(f.HasChangesInOwnership),
				b(f.HasChangesInBo),
				b(f.SelfOwned),
				b(f.SelfOwnedIndirect),
				strconv.Itoa(f.OwnerPersonsCount),
				strconv.Itoa(f.FounderPersonsCount),
				strings.Join(f.AllBoCountries, ";"),
				formatCapital(f.CharterCapital),
			})
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
